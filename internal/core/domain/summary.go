package domain

// SummaryResult is the terminal outcome of one calculation run.
type SummaryResult string

const (
	// SummaryOK means there was nothing to allocate.
	SummaryOK SummaryResult = "OK"
	// SummaryInProgress means sales were matched and the batch was committed;
	// the calc date has been stored.
	SummaryInProgress SummaryResult = "IN_PROGRESS"
	// SummaryQuantityError means requested sale volume exceeds available
	// purchase volume. Data integrity problem; not retried.
	SummaryQuantityError SummaryResult = "QUANTITY_ERROR"
	// SummaryLockError means a concurrently locked record was found mid-run.
	// Nothing was committed; the caller may retry the whole run.
	SummaryLockError SummaryResult = "LOCK_ERROR"
	// SummaryRebuildInProgress means the account was flagged for rebuild and
	// a full reprocessing task has been enqueued instead.
	SummaryRebuildInProgress SummaryResult = "REBUILD_IN_PROGRESS"
	// SummarySkipped means no financial book matches the account's exchange
	// code, so there is nowhere to post cost of sales.
	SummarySkipped SummaryResult = "SKIPPED"
)

// Summary reports how a calculation run terminated.
type Summary struct {
	BookID    string        `json:"bookID"`
	AccountID string        `json:"accountID"`
	Result    SummaryResult `json:"result"`
	Message   string        `json:"message,omitempty"`
}

// NewSummary starts a summary in the OK state.
func NewSummary(bookID, accountID string) Summary {
	return Summary{BookID: bookID, AccountID: accountID, Result: SummaryOK}
}

func (s Summary) CalculatingAsync() Summary {
	s.Result = SummaryInProgress
	s.Message = "cost of sales calculation committed"
	return s
}

func (s Summary) QuantityError() Summary {
	s.Result = SummaryQuantityError
	s.Message = "total sale quantity exceeds available purchase quantity"
	return s
}

func (s Summary) LockError() Summary {
	s.Result = SummaryLockError
	s.Message = "a record was locked by a concurrent process; run aborted"
	return s
}

func (s Summary) Rebuild() Summary {
	s.Result = SummaryRebuildInProgress
	s.Message = "account flagged for rebuild; full reprocessing enqueued"
	return s
}

func (s Summary) Skipped(reason string) Summary {
	s.Result = SummarySkipped
	s.Message = reason
	return s
}
