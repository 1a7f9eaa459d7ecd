package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRef is the slice of an account a record needs to carry around:
// enough to classify the record and to post counterparts without another
// account lookup.
type AccountRef struct {
	AccountID   string      `json:"accountID"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
}

// LiquidationLogEntry records, on a purchase, which sale consumed it.
type LiquidationLogEntry struct {
	SaleID   string          `json:"id"`
	Date     string          `json:"dt"`
	Quantity decimal.Decimal `json:"qt"`
	UnitCost decimal.Decimal `json:"uc"`
}

// PurchaseLogEntry records, on a sale, which purchase supplied it.
type PurchaseLogEntry struct {
	PurchaseID string          `json:"id"`
	Quantity   decimal.Decimal `json:"qt"`
	UnitCost   decimal.Decimal `json:"uc"`
}

// CreditNote is a reduction of a purchase's original terms: fewer units,
// less money.
type CreditNote struct {
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// PurchaseProps are the properties carried by purchase records on the
// inventory book.
//
// OriginalQuantity is the immutable as-created quantity. The allocation
// engine merges additional costs and credit notes into a purchase exactly
// once; Quantity == OriginalQuantity is the guard that tells it merging has
// not happened yet.
type PurchaseProps struct {
	PurchaseCode     string                `json:"purchaseCode"`
	OriginalQuantity decimal.Decimal       `json:"originalQuantity"`
	PurchaseCost     decimal.Decimal       `json:"purchaseCost"` // as-created cost snapshot
	TotalCost        decimal.Decimal       `json:"totalCost"`
	Order            *int                  `json:"order,omitempty"` // explicit FIFO ordering hint
	ExchangeCode     string                `json:"exchangeCode"`
	AdditionalCosts  *decimal.Decimal      `json:"additionalCosts,omitempty"` // set once merged
	CreditNote       *CreditNote           `json:"creditNote,omitempty"`      // set once merged
	LiquidationLog   []LiquidationLogEntry `json:"liquidationLog,omitempty"`
	ParentID         string                `json:"parentID,omitempty"` // set on split children
}

// SaleProps are the properties carried by sale records on the inventory book.
type SaleProps struct {
	TotalCost    decimal.Decimal    `json:"totalCost"`
	SaleInvoice  string             `json:"saleInvoice"`
	SaleAmount   decimal.Decimal    `json:"saleAmount"` // monetary amount of the originating sale
	Order        *int               `json:"order,omitempty"`
	ExchangeCode string             `json:"exchangeCode"`
	PurchaseLog  []PurchaseLogEntry `json:"purchaseLog,omitempty"`
}

// FinancialProps are the properties carried by records on a financial book
// that this engine reads (additional costs, credit notes) or writes
// (cost-of-sale postings).
type FinancialProps struct {
	PurchaseCode    string           `json:"purchaseCode,omitempty"`
	PurchaseInvoice string           `json:"purchaseInvoice,omitempty"`
	SaleInvoice     string           `json:"saleInvoice,omitempty"`
	Good            string           `json:"good,omitempty"`            // good account name
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`        // goods quantity on purchases/sales/credit notes
	AdditionalCost  *decimal.Decimal `json:"additionalCost,omitempty"`  // marks an additional-cost entry
	QuantitySold    *decimal.Decimal `json:"quantitySold,omitempty"`    // set on cost-of-sale postings
}

// Record is a single entry in a book: a movement of quantity (inventory
// book) or money (financial book) between a credit and a debit account.
//
// RecordID is assigned by the store. A record staged for creation inside a
// batch has an empty RecordID and a batch-local TempID instead; the batch
// processor rewrites temp references to real identifiers at commit time.
type Record struct {
	RecordID    string          `json:"recordID"`
	TempID      string          `json:"tempID,omitempty"`
	BookID      string          `json:"bookID"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"` // units on inventory books, money on financial books
	Credit      AccountRef      `json:"credit"`
	Debit       AccountRef      `json:"debit"`
	Description string          `json:"description"`
	Checked     bool            `json:"checked"` // fully allocated; out of FIFO consumption
	Locked      bool            `json:"locked"`  // frozen by a concurrent process; forces abort
	RemoteIDs   []string        `json:"remoteIDs,omitempty"`

	Purchase  *PurchaseProps  `json:"purchase,omitempty"`
	Sale      *SaleProps      `json:"sale,omitempty"`
	Financial *FinancialProps `json:"financial,omitempty"`

	AuditFields
}

// IsSale reports whether the record sells goods out of inventory: the
// debit side is the Sell (outgoing) account.
func (r Record) IsSale() bool {
	return r.Debit.AccountType == Outgoing
}

// IsPurchase reports whether the record brings goods into inventory: the
// credit side is the Buy (incoming) account.
func (r Record) IsPurchase() bool {
	return r.Credit.AccountType == Incoming
}

// GoodAccount returns the inventory (asset) side of a sale or purchase.
func (r Record) GoodAccount() AccountRef {
	if r.IsSale() {
		return r.Credit
	}
	return r.Debit
}

// DateValue returns the record date as a YYYYMMDD integer.
func (r Record) DateValue() int {
	return DateValue(r.Date)
}

// HasRemoteID reports whether the record already cross-references id.
func (r Record) HasRemoteID(id string) bool {
	for _, rid := range r.RemoteIDs {
		if rid == id {
			return true
		}
	}
	return false
}
