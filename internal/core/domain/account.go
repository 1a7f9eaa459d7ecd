package domain

import "time"

// AccountType defines the fundamental ledger type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Incoming  AccountType = "INCOMING"
	Outgoing  AccountType = "OUTGOING"
)

// Group is a named set of accounts within a book. Groups carry the
// exchange code property used to resolve which financial book an
// inventory account settles into.
type Group struct {
	GroupID      string `json:"groupID"`
	BookID       string `json:"bookID"`
	Name         string `json:"name"`
	ExchangeCode string `json:"exchangeCode"` // optional
	Hidden       bool   `json:"hidden"`
	AuditFields
}

// Account represents an account within a book.
//
// The engine mutates exactly two fields on inventory good accounts:
// NeedsRebuild and COGSCalcDate. Everything else is owned by upstream
// event processing.
type Account struct {
	AccountID    string      `json:"accountID"`
	BookID       string      `json:"bookID"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	Groups       []Group     `json:"groups"`
	NeedsRebuild bool        `json:"needsRebuild"`
	COGSCalcDate *time.Time  `json:"cogsCalcDate"` // date of the last sale included in a successful run
	Archived     bool        `json:"archived"`
	AuditFields
}

// ExchangeCode resolves the account's exchange code from its groups.
// Incoming/Outgoing accounts (the Buy/Sell counterparts) have none.
func (a Account) ExchangeCode() string {
	if a.AccountType == Incoming || a.AccountType == Outgoing {
		return ""
	}
	for _, g := range a.Groups {
		if g.ExchangeCode != "" {
			return g.ExchangeCode
		}
	}
	return ""
}

// CalcDateValue returns the last calculation date as a comparable integer
// (YYYYMMDD), or 0 when no calculation has completed yet.
func (a Account) CalcDateValue() int {
	if a.COGSCalcDate == nil {
		return 0
	}
	return DateValue(*a.COGSCalcDate)
}

// DateValue collapses a date to a YYYYMMDD integer for ordering checks.
func DateValue(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
