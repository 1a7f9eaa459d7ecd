package domain

import "time"

// Book represents a single ledger within a collection.
//
// A collection holds exactly one inventory book (quantities of goods) plus
// one financial book per exchange code (monetary amounts). Cost of sales
// computed on the inventory book is posted into the matching financial book.
type Book struct {
	BookID         string `json:"bookID"`
	Name           string `json:"name"`
	CollectionID   string `json:"collectionID"`
	ExchangeCode   string `json:"exchangeCode"`   // empty on the inventory book
	FractionDigits int32  `json:"fractionDigits"` // decimal precision for quantity rounding
	IsInventory    bool   `json:"isInventory"`
	AuditFields
}

// FormatDate renders a date the way this book displays it.
// Kept as ISO so stored calc-date properties sort and compare naturally.
func (b Book) FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
