package repositories

import (
	"context"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// RecordReader defines read operations for record data.
type RecordReader interface {
	// QueryRecords retrieves the records of a book matching the query,
	// ordered by date then creation order.
	QueryRecords(ctx context.Context, bookID string, query domain.RecordQuery) ([]domain.Record, error)
}

// RecordWriter defines write operations for record data.
//
// The store offers per-record operations only; there is no multi-record
// transaction primitive. All-or-nothing semantics across a run are
// approximated by the batch processor, which stages mutations in memory
// and flushes them through these methods once the run has succeeded.
type RecordWriter interface {
	// CreateRecord persists a new record and returns it with its
	// store-assigned identifier.
	CreateRecord(ctx context.Context, record domain.Record) (*domain.Record, error)

	// UpdateRecord overwrites an existing record's amount, accounts,
	// checked flag, properties and remote ids.
	UpdateRecord(ctx context.Context, record domain.Record) error

	// TrashRecord removes a record from its book.
	TrashRecord(ctx context.Context, recordID string) error
}

// RecordRepository combines all record-related repository interfaces.
type RecordRepository interface {
	RecordReader
	RecordWriter
}
