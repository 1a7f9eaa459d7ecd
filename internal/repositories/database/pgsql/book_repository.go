package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils/mapping"
)

type PgxBookRepository struct {
	BaseRepository
}

// newPgxBookRepository creates a new repository for book data.
func newPgxBookRepository(pool *pgxpool.Pool) portsrepo.BookRepository {
	return &PgxBookRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.BookRepository = (*PgxBookRepository)(nil)

const bookColumns = `book_id, name, collection_id, exchange_code, fraction_digits, is_inventory, created_at, created_by, last_updated_at, last_updated_by`

func scanBook(row pgx.Row) (models.Book, error) {
	var m models.Book
	err := row.Scan(
		&m.BookID,
		&m.Name,
		&m.CollectionID,
		&m.ExchangeCode,
		&m.FractionDigits,
		&m.IsInventory,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindBookByID retrieves a book by its unique identifier.
func (r *PgxBookRepository) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE book_id = $1;`

	m, err := scanBook(r.Pool.QueryRow(ctx, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find book by id %s: %w", bookID, err)
	}

	domainBook := mapping.ToDomainBook(m)
	return &domainBook, nil
}

// FindBooksByCollection retrieves all books sharing a collection.
func (r *PgxBookRepository) FindBooksByCollection(ctx context.Context, collectionID string) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE collection_id = $1 ORDER BY book_id;`

	rows, err := r.Pool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books of collection %s: %w", collectionID, err)
	}
	defer rows.Close()

	modelBooks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Book{}, nil
		}
		return nil, fmt.Errorf("failed to scan books of collection %s: %w", collectionID, err)
	}

	return mapping.ToDomainBookSlice(modelBooks), nil
}
