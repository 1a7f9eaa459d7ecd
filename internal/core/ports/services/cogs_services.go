package services

import (
	"context"
	"time"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// CostOfSalesSvc is the calculation entry point consumed by the handlers.
type CostOfSalesSvc interface {
	// CalculateCostOfSales runs FIFO matching for one good account of the
	// inventory book identified by bookID, posting cost-of-sale records
	// into the matching financial book. toDate bounds the records
	// considered; nil means today.
	CalculateCostOfSales(ctx context.Context, bookID string, accountID string, toDate *time.Time) (domain.Summary, error)

	// Validate fails when the inventory book linked to bookID still has
	// pending background tasks.
	Validate(ctx context.Context, bookID string) error
}

// RebuildSvc manages the rebuild flag state machine and the asynchronous
// full-history reprocessing worker.
type RebuildSvc interface {
	// FlagForRebuild marks an account's FIFO history as stale.
	FlagForRebuild(ctx context.Context, accountID string) error

	// EnqueueRebuild persists a rebuild task for the account and hands it
	// to the background worker. Returns the queued task.
	EnqueueRebuild(ctx context.Context, bookID string, accountID string) (domain.Task, error)
}

// EventSvc reacts to ledger webhook events: replication of financial
// purchases/sales into the inventory book and rebuild flagging.
type EventSvc interface {
	// HandleEvent processes one webhook event and returns a short
	// human-readable description of what was done, or an empty string
	// when the event was ignored.
	HandleEvent(ctx context.Context, event domain.Event) (string, error)
}

// AuthSvc exchanges the bot API key for a short-lived bearer token.
type AuthSvc interface {
	// IssueToken verifies the API key and returns a signed token plus its
	// expiry time.
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error)
}
