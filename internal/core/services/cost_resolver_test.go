package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

func adjustmentRecord(id string, amount string, financial *domain.FinancialProps, credit, debit domain.AccountRef) domain.Record {
	return domain.Record{
		RecordID:  id,
		Date:      day(10),
		Amount:    dec(amount),
		Credit:    credit,
		Debit:     debit,
		Financial: financial,
	}
}

func TestCostResolver_AggregatesAdditionalCosts(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := newCostResolver(records, 2)
	fin := domain.Book{BookID: "fin", ExchangeCode: "USD"}
	purchase := purchaseRecord("PO-1", day(1), "10", "100")

	freight := dec("15")
	duties := dec("5")
	linked := []domain.Record{
		adjustmentRecord("f1", "15", &domain.FinancialProps{PurchaseCode: "PO-1", AdditionalCost: &freight},
			domain.AccountRef{Name: "Carrier", AccountType: domain.Liability},
			domain.AccountRef{Name: "Widget", AccountType: domain.Asset}),
		adjustmentRecord("f2", "5", &domain.FinancialProps{PurchaseCode: "PO-1", AdditionalCost: &duties},
			domain.AccountRef{Name: "Customs", AccountType: domain.Liability},
			domain.AccountRef{Name: "Widget", AccountType: domain.Asset}),
	}
	records.On("QueryRecords", mock.Anything, "fin", mock.Anything).Return(linked, nil)

	out, err := resolver.AdditionalCostsAndCreditNotes(context.Background(), fin, "Widget", purchase)

	require.NoError(t, err)
	assert.True(t, out.AdditionalCosts.Equal(dec("20")))
	assert.True(t, out.CreditNote.Amount.IsZero())
}

func TestCostResolver_AggregatesCreditNotes(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := newCostResolver(records, 2)
	fin := domain.Book{BookID: "fin", ExchangeCode: "USD"}
	purchase := purchaseRecord("PO-1", day(1), "10", "100")

	// Two units returned to the supplier for 20.
	returned := dec("2")
	linked := []domain.Record{
		adjustmentRecord("c1", "20", &domain.FinancialProps{PurchaseCode: "PO-1", Quantity: &returned},
			domain.AccountRef{Name: "Widget", AccountType: domain.Asset},
			domain.AccountRef{Name: "Supplier", AccountType: domain.Liability}),
	}
	records.On("QueryRecords", mock.Anything, "fin", mock.Anything).Return(linked, nil)

	out, err := resolver.AdditionalCostsAndCreditNotes(context.Background(), fin, "Widget", purchase)

	require.NoError(t, err)
	assert.True(t, out.CreditNote.Amount.Equal(dec("20")))
	assert.True(t, out.CreditNote.Quantity.Equal(dec("2")))
	assert.True(t, out.AdditionalCosts.IsZero())
}

func TestCostResolver_SkipsTheOriginalPurchaseEntry(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := newCostResolver(records, 2)
	fin := domain.Book{BookID: "fin", ExchangeCode: "USD"}
	purchase := purchaseRecord("PO-1", day(1), "10", "100")

	// The financial purchase itself carries its code as invoice and must
	// not be double counted.
	linked := []domain.Record{
		adjustmentRecord("orig", "100", &domain.FinancialProps{PurchaseCode: "PO-1", PurchaseInvoice: "PO-1"},
			domain.AccountRef{Name: "Supplier", AccountType: domain.Liability},
			domain.AccountRef{Name: "Widget", AccountType: domain.Asset}),
	}
	records.On("QueryRecords", mock.Anything, "fin", mock.Anything).Return(linked, nil)

	out, err := resolver.AdditionalCostsAndCreditNotes(context.Background(), fin, "Widget", purchase)

	require.NoError(t, err)
	assert.True(t, out.AdditionalCosts.IsZero())
	assert.True(t, out.CreditNote.Amount.IsZero())
}

func TestCostResolver_QueryWindowFollowsLookback(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := newCostResolver(records, 3)
	fin := domain.Book{BookID: "fin", ExchangeCode: "USD"}
	purchase := purchaseRecord("PO-1", day(15), "10", "100")

	records.On("QueryRecords", mock.Anything, "fin", mock.MatchedBy(func(q domain.RecordQuery) bool {
		return q.PurchaseCode == "PO-1" &&
			q.After != nil && q.After.Equal(day(14)) &&
			q.Before != nil && q.Before.Equal(time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC))
	})).Return([]domain.Record{}, nil).Once()

	_, err := resolver.AdditionalCostsAndCreditNotes(context.Background(), fin, "Widget", purchase)

	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestCostResolver_NoPurchaseCodeSkipsQuery(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := newCostResolver(records, 2)
	fin := domain.Book{BookID: "fin"}

	purchase := purchaseRecord("", day(1), "10", "100")
	purchase.Purchase.PurchaseCode = ""

	out, err := resolver.AdditionalCostsAndCreditNotes(context.Background(), fin, "Widget", purchase)

	require.NoError(t, err)
	assert.True(t, out.AdditionalCosts.IsZero())
	records.AssertNotCalled(t, "QueryRecords", mock.Anything, mock.Anything, mock.Anything)
}
