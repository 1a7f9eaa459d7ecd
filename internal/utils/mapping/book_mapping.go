package mapping

import (
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
)

// ToModelBook converts a domain Book to a model Book
func ToModelBook(d domain.Book) models.Book {
	return models.Book{
		BookID:         d.BookID,
		Name:           d.Name,
		CollectionID:   d.CollectionID,
		ExchangeCode:   d.ExchangeCode,
		FractionDigits: d.FractionDigits,
		IsInventory:    d.IsInventory,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBook converts a model Book to a domain Book
func ToDomainBook(m models.Book) domain.Book {
	return domain.Book{
		BookID:         m.BookID,
		Name:           m.Name,
		CollectionID:   m.CollectionID,
		ExchangeCode:   m.ExchangeCode,
		FractionDigits: m.FractionDigits,
		IsInventory:    m.IsInventory,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBookSlice converts a slice of model Books to domain Books
func ToDomainBookSlice(ms []models.Book) []domain.Book {
	books := make([]domain.Book, len(ms))
	for i, m := range ms {
		books[i] = ToDomainBook(m)
	}
	return books
}
