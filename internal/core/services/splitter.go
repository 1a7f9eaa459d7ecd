package services

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// splitResult is the outcome of partially consuming a purchase: the
// original record reduced to its unconsumed remainder, plus a brand-new
// checked record carrying the consumed portion.
type splitResult struct {
	Residual domain.Record
	Consumed domain.Record
}

// splitPurchase derives both halves of a partial consumption.
//
// The consumed cost is consumedQty * unitCost; the residual cost is
// derived by subtraction from the effective cost rather than computed
// independently, so consumed + residual always equals the pre-split cost
// exactly. Quantity conservation holds the same way.
func splitPurchase(purchase domain.Record, consumedQty, effectiveQty, effectiveCost, unitCost decimal.Decimal, liquidation domain.LiquidationLogEntry) splitResult {
	consumedCost := consumedQty.Mul(unitCost)
	residualQty := effectiveQty.Sub(consumedQty)
	residualCost := effectiveCost.Sub(consumedCost)

	residual := purchase
	residual.Amount = residualQty
	residual.Checked = false
	residualProps := *purchase.Purchase
	residualProps.TotalCost = residualCost
	residual.Purchase = &residualProps

	consumed := domain.Record{
		BookID:      purchase.BookID,
		Date:        purchase.Date,
		Amount:      consumedQty,
		Credit:      purchase.Credit,
		Debit:       purchase.Debit,
		Description: purchase.Description,
		Checked:     true,
		Purchase: &domain.PurchaseProps{
			PurchaseCode:     purchase.Purchase.PurchaseCode,
			OriginalQuantity: consumedQty,
			PurchaseCost:     consumedCost,
			TotalCost:        consumedCost,
			Order:            purchase.Purchase.Order,
			ExchangeCode:     purchase.Purchase.ExchangeCode,
			LiquidationLog:   []domain.LiquidationLogEntry{liquidation},
			ParentID:         purchase.RecordID,
		},
	}

	return splitResult{Residual: residual, Consumed: consumed}
}
