package models

// Book represents one ledger book: the inventory book of a collection or a
// financial book in a given currency.
type Book struct {
	BookID         string `db:"book_id"`
	Name           string `db:"name"`
	CollectionID   string `db:"collection_id"`
	ExchangeCode   string `db:"exchange_code"`
	FractionDigits int32  `db:"fraction_digits"`
	IsInventory    bool   `db:"is_inventory"`
	AuditFields
}
