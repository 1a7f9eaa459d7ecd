package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// EventAccountRef is one side of a webhook transaction.
type EventAccountRef struct {
	AccountID   string `json:"accountID"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"accountType" binding:"required"`
}

// EventRecord is the transaction carried by a webhook event.
type EventRecord struct {
	RecordID    string          `json:"recordID" binding:"required"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount"`
	Credit      EventAccountRef `json:"credit" binding:"required"`
	Debit       EventAccountRef `json:"debit" binding:"required"`
	Description string          `json:"description"`

	// Properties of the originating financial transaction.
	PurchaseCode    string           `json:"purchaseCode,omitempty"`
	PurchaseInvoice string           `json:"purchaseInvoice,omitempty"`
	SaleInvoice     string           `json:"saleInvoice,omitempty"`
	Good            string           `json:"good,omitempty"`
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`
	AdditionalCost  *decimal.Decimal `json:"additionalCost,omitempty"`
}

// EventRequest is a ledger webhook payload.
type EventRequest struct {
	Type   string      `json:"type" binding:"required,oneof=TRANSACTION_CHECKED TRANSACTION_UPDATED TRANSACTION_DELETED"`
	BookID string      `json:"bookID" binding:"required"`
	Record EventRecord `json:"record" binding:"required"`
}

// EventResponse describes what the bot did with the event.
type EventResponse struct {
	Processed bool   `json:"processed"`
	Action    string `json:"action,omitempty"`
}

// ToDomainEvent converts the webhook payload to a domain.Event.
func (r EventRequest) ToDomainEvent() domain.Event {
	date, _ := time.Parse("2006-01-02", r.Record.Date)
	return domain.Event{
		Type:   domain.EventType(r.Type),
		BookID: r.BookID,
		Record: domain.Record{
			RecordID:    r.Record.RecordID,
			BookID:      r.BookID,
			Date:        date,
			Amount:      r.Record.Amount,
			Credit:      toAccountRef(r.Record.Credit),
			Debit:       toAccountRef(r.Record.Debit),
			Description: r.Record.Description,
			Financial: &domain.FinancialProps{
				PurchaseCode:    r.Record.PurchaseCode,
				PurchaseInvoice: r.Record.PurchaseInvoice,
				SaleInvoice:     r.Record.SaleInvoice,
				Good:            r.Record.Good,
				Quantity:        r.Record.Quantity,
				AdditionalCost:  r.Record.AdditionalCost,
			},
		},
	}
}

func toAccountRef(ref EventAccountRef) domain.AccountRef {
	return domain.AccountRef{
		AccountID:   ref.AccountID,
		Name:        ref.Name,
		AccountType: domain.AccountType(ref.AccountType),
	}
}
