package repositories

import (
	"context"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// BookReader defines read operations for book data.
type BookReader interface {
	// FindBookByID retrieves a book by its unique identifier.
	FindBookByID(ctx context.Context, bookID string) (*domain.Book, error)

	// FindBooksByCollection retrieves all books sharing a collection:
	// the inventory book plus its per-exchange-code financial books.
	FindBooksByCollection(ctx context.Context, collectionID string) ([]domain.Book, error)
}

// BookRepository combines all book-related repository interfaces.
type BookRepository interface {
	BookReader
}
