package models

import "time"

// Account represents an account within a book.
type Account struct {
	AccountID    string     `db:"account_id"`
	BookID       string     `db:"book_id"`
	Name         string     `db:"name"`
	AccountType  string     `db:"account_type"`
	NeedsRebuild bool       `db:"needs_rebuild"`
	COGSCalcDate *time.Time `db:"cogs_calc_date"` // Nullable
	Archived     bool       `db:"archived"`
	AuditFields
}

// Group represents a named set of accounts within a book.
type Group struct {
	GroupID      string `db:"group_id"`
	BookID       string `db:"book_id"`
	Name         string `db:"name"`
	ExchangeCode string `db:"exchange_code"` // Nullable in DB, empty string here
	Hidden       bool   `db:"hidden"`
	AuditFields
}
