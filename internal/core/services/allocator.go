package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// allocator matches one sale at a time against the ordered purchase list
// of a single good account, staging every mutation on the batch processor.
//
// Purchases are shared across sales of the same run via pointers: a
// partial consumption updates the record in place so the next sale sees
// the reduced remainder.
type allocator struct {
	resolver        *costResolver
	inventoryBook   domain.Book
	financialBook   domain.Book
	goodAccountName string
	proc            *batchProcessor
}

// ProcessSale consumes purchases in FIFO order until the sale quantity is
// exhausted. It returns the total cost allocated to the sale and whether
// the sale was fully allocated (its remaining quantity rounds to zero at
// the book's precision).
//
// A locked purchase poisons the batch immediately; the caller must check
// the processor after each sale and abort the run.
func (a *allocator) ProcessSale(ctx context.Context, sale *domain.Record, purchases []*domain.Record) (decimal.Decimal, bool, error) {
	slog.InfoContext(ctx, "Processing sale",
		slog.String("record_id", sale.RecordID),
		slog.String("description", sale.Description),
	)

	soldQuantity := sale.Amount
	saleCost := decimal.Zero
	var purchaseLog []domain.PurchaseLogEntry

	for _, purchase := range purchases {
		if purchase.Checked {
			continue
		}
		if purchase.Locked {
			a.proc.FlagLockConflict()
			return decimal.Zero, false, nil
		}
		props := purchase.Purchase
		if props == nil {
			return decimal.Zero, false, fmt.Errorf("record %s is not a purchase", purchase.RecordID)
		}

		slog.InfoContext(ctx, "Consuming purchase",
			slog.String("record_id", purchase.RecordID),
			slog.String("description", purchase.Description),
		)

		additionalCosts := decimal.Zero
		creditNote := domain.CreditNote{Quantity: decimal.Zero, Amount: decimal.Zero}
		if props.OriginalQuantity.Equal(purchase.Amount) {
			// Still at the as-created quantity, so additional costs and
			// credit notes have not been merged yet.
			resolved, err := a.resolver.AdditionalCostsAndCreditNotes(ctx, a.financialBook, a.goodAccountName, *purchase)
			if err != nil {
				return decimal.Zero, false, err
			}
			additionalCosts = resolved.AdditionalCosts
			creditNote = resolved.CreditNote
		}

		effectiveQty := purchase.Amount.Sub(creditNote.Quantity)
		effectiveCost := props.TotalCost.Add(additionalCosts).Sub(creditNote.Amount)
		if !effectiveQty.IsPositive() {
			// The credit note took the whole purchase back; there is
			// nothing left to consume and no per-unit cost to compute.
			purchase.Amount = decimal.Zero
			props.TotalCost = effectiveCost
			mergeResolvedProps(props, additionalCosts, creditNote)
			purchase.Checked = true
			a.proc.StageUpdate(*purchase)
			continue
		}
		unitCost := effectiveCost.Div(effectiveQty)

		if soldQuantity.GreaterThanOrEqual(effectiveQty) {
			// Full consumption; equality lands here too so no degenerate
			// zero-quantity split is ever created.
			saleCost = saleCost.Add(effectiveCost)

			purchase.Amount = effectiveQty
			props.TotalCost = effectiveCost
			mergeResolvedProps(props, additionalCosts, creditNote)
			props.LiquidationLog = append(props.LiquidationLog, domain.LiquidationLogEntry{
				SaleID:   sale.RecordID,
				Date:     a.inventoryBook.FormatDate(sale.Date),
				Quantity: sale.Amount,
				UnitCost: unitCost,
			})
			purchase.Checked = true
			a.proc.StageUpdate(*purchase)

			purchaseLog = append(purchaseLog, domain.PurchaseLogEntry{
				PurchaseID: purchase.RecordID,
				Quantity:   effectiveQty,
				UnitCost:   unitCost,
			})
			soldQuantity = soldQuantity.Sub(effectiveQty)
		} else {
			// Partial consumption: split off the consumed portion.
			mergeResolvedProps(props, additionalCosts, creditNote)
			split := splitPurchase(*purchase, soldQuantity, effectiveQty, effectiveCost, unitCost, domain.LiquidationLogEntry{
				SaleID:   sale.RecordID,
				Date:     a.inventoryBook.FormatDate(sale.Date),
				Quantity: sale.Amount,
				UnitCost: unitCost,
			})

			consumedCost := split.Consumed.Purchase.TotalCost
			saleCost = saleCost.Add(consumedCost)

			*purchase = split.Residual
			a.proc.StageUpdate(*purchase)
			a.proc.StageCreate(split.Consumed)

			purchaseLog = append(purchaseLog, domain.PurchaseLogEntry{
				PurchaseID: purchase.RecordID,
				Quantity:   split.Consumed.Amount,
				UnitCost:   unitCost,
			})
			soldQuantity = soldQuantity.Sub(split.Consumed.Amount)
		}

		if soldQuantity.Round(a.inventoryBook.FractionDigits).IsZero() {
			break
		}
	}

	if !soldQuantity.Round(a.inventoryBook.FractionDigits).IsZero() {
		// Capacity was verified across the whole run before allocation
		// began, so this only happens on inconsistent data.
		return saleCost, false, nil
	}

	if len(purchaseLog) > 0 {
		sale.Sale.TotalCost = saleCost
		sale.Sale.PurchaseLog = append(sale.Sale.PurchaseLog, purchaseLog...)
		sale.Checked = true
	}
	a.proc.StageUpdate(*sale)

	return saleCost, true, nil
}

// mergeResolvedProps records the merged adjustments on the purchase, once.
func mergeResolvedProps(props *domain.PurchaseProps, additionalCosts decimal.Decimal, creditNote domain.CreditNote) {
	if props.AdditionalCosts == nil && !additionalCosts.IsZero() {
		props.AdditionalCosts = &additionalCosts
	}
	if props.CreditNote == nil && !creditNote.Amount.IsZero() {
		note := creditNote
		props.CreditNote = &note
	}
}
