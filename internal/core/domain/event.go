package domain

// EventType names the ledger webhook events this service reacts to.
type EventType string

const (
	// EventTransactionChecked fires when a financial transaction is
	// checked; purchases and sales of goods are replicated into the
	// inventory book in response.
	EventTransactionChecked EventType = "TRANSACTION_CHECKED"
	// EventTransactionUpdated fires when a posted transaction is edited.
	EventTransactionUpdated EventType = "TRANSACTION_UPDATED"
	// EventTransactionDeleted fires when a posted transaction is trashed.
	EventTransactionDeleted EventType = "TRANSACTION_DELETED"
)

// Event is a ledger webhook payload: something happened to a record in
// the named book.
type Event struct {
	Type   EventType `json:"type"`
	BookID string    `json:"bookID"`
	Record Record    `json:"record"`
}
