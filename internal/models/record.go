package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record represents one row in the records table. Both book kinds share the
// table: inventory records carry purchase/sale property documents, financial
// records carry the financial property document. The documents are stored as
// JSONB and scanned into the domain property structs directly.
type Record struct {
	RecordID    string          `db:"record_id"`
	BookID      string          `db:"book_id"`
	RecordDate  time.Time       `db:"record_date"`
	Amount      decimal.Decimal `db:"amount"`
	CreditID    string          `db:"credit_account_id"`
	CreditName  string          `db:"credit_account_name"`
	CreditType  string          `db:"credit_account_type"`
	DebitID     string          `db:"debit_account_id"`
	DebitName   string          `db:"debit_account_name"`
	DebitType   string          `db:"debit_account_type"`
	Description string          `db:"description"`
	Checked     bool            `db:"checked"`
	Locked      bool            `db:"locked"`
	RemoteIDs   []string        `db:"remote_ids"` // text[]

	PurchaseProps  []byte `db:"purchase_props"`  // JSONB, nullable
	SaleProps      []byte `db:"sale_props"`      // JSONB, nullable
	FinancialProps []byte `db:"financial_props"` // JSONB, nullable

	AuditFields
}
