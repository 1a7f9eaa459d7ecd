package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, book_id, name, account_type, needs_rebuild, cogs_calc_date, archived, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.BookID,
		&m.Name,
		&m.AccountType,
		&m.NeedsRebuild,
		&m.COGSCalcDate,
		&m.Archived,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindAccountByID retrieves an account with its groups.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by id %s: %w", accountID, err)
	}

	groups, err := r.findGroupsForAccount(ctx, m.AccountID)
	if err != nil {
		return nil, err
	}

	domainAcc := mapping.ToDomainAccount(m, groups)
	return &domainAcc, nil
}

// FindAccountByName retrieves an account within a book by its name.
func (r *PgxAccountRepository) FindAccountByName(ctx context.Context, bookID string, name string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE book_id = $1 AND name = $2;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, bookID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %q in book %s: %w", name, bookID, err)
	}

	groups, err := r.findGroupsForAccount(ctx, m.AccountID)
	if err != nil {
		return nil, err
	}

	domainAcc := mapping.ToDomainAccount(m, groups)
	return &domainAcc, nil
}

// findGroupsForAccount loads the groups an account belongs to.
func (r *PgxAccountRepository) findGroupsForAccount(ctx context.Context, accountID string) ([]models.Group, error) {
	query := `
		SELECT g.group_id, g.book_id, g.name, COALESCE(g.exchange_code, ''), g.hidden, g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
		FROM groups g
		JOIN account_groups ag ON ag.group_id = g.group_id
		WHERE ag.account_id = $1
		ORDER BY g.name;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for account %s: %w", accountID, err)
	}
	defer rows.Close()

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Group, error) {
		var g models.Group
		err := row.Scan(
			&g.GroupID,
			&g.BookID,
			&g.Name,
			&g.ExchangeCode,
			&g.Hidden,
			&g.CreatedAt,
			&g.CreatedBy,
			&g.LastUpdatedAt,
			&g.LastUpdatedBy,
		)
		return g, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan groups for account %s: %w", accountID, err)
	}
	return groups, nil
}

// SaveAccount persists a new account, including group memberships.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	now := time.Now()

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	insertAccount := `
		INSERT INTO accounts (account_id, book_id, name, account_type, needs_rebuild, cogs_calc_date, archived, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, insertAccount,
		m.AccountID,
		m.BookID,
		m.Name,
		m.AccountType,
		m.NeedsRebuild,
		m.COGSCalcDate,
		m.Archived,
		now,
		"system",
		now,
		"system",
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: account %q already exists in book %s", apperrors.ErrDuplicate, account.Name, account.BookID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}

	insertMembership := `INSERT INTO account_groups (account_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`
	for _, g := range account.Groups {
		if _, err := tx.Exec(ctx, insertMembership, m.AccountID, g.GroupID); err != nil {
			return fmt.Errorf("failed to link account %s to group %s: %w", m.AccountID, g.GroupID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// SaveGroup persists a new group.
func (r *PgxAccountRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	m := mapping.ToModelGroup(group)
	now := time.Now()

	query := `
		INSERT INTO groups (group_id, book_id, name, exchange_code, hidden, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		ON CONFLICT (book_id, name) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.GroupID,
		m.BookID,
		m.Name,
		m.ExchangeCode,
		m.Hidden,
		now,
		"system",
		now,
		"system",
	)
	if err != nil {
		return fmt.Errorf("failed to save group %s: %w", group.GroupID, err)
	}
	return nil
}

// SetNeedsRebuild flips the account's rebuild flag.
func (r *PgxAccountRepository) SetNeedsRebuild(ctx context.Context, accountID string, needsRebuild bool) error {
	query := `UPDATE accounts SET needs_rebuild = $2, last_updated_at = $3 WHERE account_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, accountID, needsRebuild, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set rebuild flag on account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetCOGSCalcDate stores the date of the last sale included in a
// successful calculation; nil clears it.
func (r *PgxAccountRepository) SetCOGSCalcDate(ctx context.Context, accountID string, calcDate *time.Time) error {
	query := `UPDATE accounts SET cogs_calc_date = $2, last_updated_at = $3 WHERE account_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, accountID, calcDate, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set calc date on account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
