package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
)

// defaultCostLookbackMonths bounds the financial-book query window when
// merging additional costs and credit notes into a purchase.
const defaultCostLookbackMonths = 2

// resolvedCosts aggregates what the financial book knows about a purchase
// beyond its original terms.
type resolvedCosts struct {
	AdditionalCosts decimal.Decimal
	CreditNote      domain.CreditNote
}

// costResolver finds additional-cost and credit-note records linked to a
// purchase code on the financial book.
//
// The caller only invokes it while the purchase is still at its as-created
// quantity; once the aggregates are persisted onto the purchase the
// quantity guard keeps them from being merged twice.
type costResolver struct {
	records        portsrepo.RecordReader
	lookbackMonths int
}

func newCostResolver(records portsrepo.RecordReader, lookbackMonths int) *costResolver {
	if lookbackMonths <= 0 {
		lookbackMonths = defaultCostLookbackMonths
	}
	return &costResolver{records: records, lookbackMonths: lookbackMonths}
}

// AdditionalCostsAndCreditNotes queries the financial book for records
// carrying the purchase's code, dated between the purchase date and the
// lookback horizon, and aggregates them.
//
// Classification: a record crediting the good account returns goods (a
// credit note, reducing quantity and cost); a record flagged as an
// additional cost increases the cost basis. The original purchase entry
// itself (purchase code equals its purchase invoice) is skipped.
func (r *costResolver) AdditionalCostsAndCreditNotes(ctx context.Context, financialBook domain.Book, goodAccountName string, purchase domain.Record) (resolvedCosts, error) {
	out := resolvedCosts{
		AdditionalCosts: decimal.Zero,
		CreditNote:      domain.CreditNote{Quantity: decimal.Zero, Amount: decimal.Zero},
	}
	if purchase.Purchase == nil || purchase.Purchase.PurchaseCode == "" {
		return out, nil
	}
	code := purchase.Purchase.PurchaseCode

	after := purchase.Date.AddDate(0, 0, -1)
	before := purchase.Date.AddDate(0, r.lookbackMonths, 0)
	query := domain.RecordQuery{PurchaseCode: code, After: &after, Before: &before}

	linked, err := r.records.QueryRecords(ctx, financialBook.BookID, query)
	if err != nil {
		return out, fmt.Errorf("failed to query cost records for purchase code %s: %w", code, err)
	}

	for _, rec := range linked {
		if rec.Financial == nil {
			continue
		}
		// The original purchase entry carries its own code as invoice.
		if rec.Financial.PurchaseInvoice == code {
			continue
		}
		if rec.Financial.AdditionalCost != nil {
			out.AdditionalCosts = out.AdditionalCosts.Add(rec.Amount)
			continue
		}
		if rec.Credit.Name == goodAccountName {
			out.CreditNote.Amount = out.CreditNote.Amount.Add(rec.Amount)
			if rec.Financial.Quantity != nil {
				out.CreditNote.Quantity = out.CreditNote.Quantity.Add(*rec.Financial.Quantity)
			}
		}
	}

	if !out.AdditionalCosts.IsZero() || !out.CreditNote.Amount.IsZero() {
		slog.InfoContext(ctx, "Resolved purchase cost adjustments",
			slog.String("purchase_code", code),
			slog.String("additional_costs", out.AdditionalCosts.String()),
			slog.String("credit_note_amount", out.CreditNote.Amount.String()),
			slog.String("credit_note_quantity", out.CreditNote.Quantity.String()),
		)
	}
	return out, nil
}
