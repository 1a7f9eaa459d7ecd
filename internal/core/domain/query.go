package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecordQuery selects records within one book. The zero value matches
// everything; filters combine with AND.
//
// After/Before are exclusive bounds on the record date, matching the
// textual query shape `account:'<name>' [after:<date>] [before:<date>]`
// used by the record store.
type RecordQuery struct {
	Account      string
	PurchaseCode string
	RemoteID     string
	After        *time.Time
	Before       *time.Time
}

// String renders the query in the store's textual form. Used for logging
// and for stores that accept the textual shape directly.
func (q RecordQuery) String() string {
	parts := make([]string, 0, 5)
	if q.Account != "" {
		parts = append(parts, fmt.Sprintf("account:'%s'", q.Account))
	}
	if q.PurchaseCode != "" {
		parts = append(parts, fmt.Sprintf("purchase_code:'%s'", q.PurchaseCode))
	}
	if q.RemoteID != "" {
		parts = append(parts, fmt.Sprintf("remote_id:%s", q.RemoteID))
	}
	if q.After != nil {
		parts = append(parts, "after:"+q.After.Format("2006-01-02"))
	}
	if q.Before != nil {
		parts = append(parts, "before:"+q.Before.Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}
