package repositories

import (
	"context"
	"time"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves an account with its groups.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByName retrieves an account within a book by its name.
	FindAccountByName(ctx context.Context, bookID string, name string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account, including group memberships.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveGroup persists a new group.
	SaveGroup(ctx context.Context, group domain.Group) error

	// SetNeedsRebuild flips the account's rebuild flag.
	SetNeedsRebuild(ctx context.Context, accountID string, needsRebuild bool) error

	// SetCOGSCalcDate stores the date of the last sale included in a
	// successful calculation; nil clears it.
	SetCOGSCalcDate(ctx context.Context, accountID string, calcDate *time.Time) error
}

// AccountRepository combines all account-related repository interfaces.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
