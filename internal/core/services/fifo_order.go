package services

import (
	"sort"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// orderHint returns the record's explicit FIFO ordering hint, if any.
func orderHint(r domain.Record) *int {
	if r.Purchase != nil {
		return r.Purchase.Order
	}
	if r.Sale != nil {
		return r.Sale.Order
	}
	return nil
}

// fifoLess orders two records for FIFO consumption: explicit order hint
// first, record date otherwise. Ties fall through to insertion order via
// the stable sort in SortFIFO.
func fifoLess(a, b domain.Record) bool {
	ao, bo := orderHint(a), orderHint(b)
	if ao != nil && bo != nil && *ao != *bo {
		return *ao < *bo
	}
	return a.DateValue() < b.DateValue()
}

// SortFIFO sorts records in place for deterministic FIFO processing.
// The sort is stable so records with equal keys keep their creation order.
func SortFIFO(records []domain.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return fifoLess(records[i], records[j])
	})
}
