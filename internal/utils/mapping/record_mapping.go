package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
)

// ToModelRecord converts a domain Record to a model Record, serialising the
// property documents to JSON.
func ToModelRecord(d domain.Record) (models.Record, error) {
	m := models.Record{
		RecordID:    d.RecordID,
		BookID:      d.BookID,
		RecordDate:  d.Date,
		Amount:      d.Amount,
		CreditID:    d.Credit.AccountID,
		CreditName:  d.Credit.Name,
		CreditType:  string(d.Credit.AccountType),
		DebitID:     d.Debit.AccountID,
		DebitName:   d.Debit.Name,
		DebitType:   string(d.Debit.AccountType),
		Description: d.Description,
		Checked:     d.Checked,
		Locked:      d.Locked,
		RemoteIDs:   d.RemoteIDs,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}

	var err error
	if d.Purchase != nil {
		if m.PurchaseProps, err = json.Marshal(d.Purchase); err != nil {
			return models.Record{}, fmt.Errorf("failed to marshal purchase props: %w", err)
		}
	}
	if d.Sale != nil {
		if m.SaleProps, err = json.Marshal(d.Sale); err != nil {
			return models.Record{}, fmt.Errorf("failed to marshal sale props: %w", err)
		}
	}
	if d.Financial != nil {
		if m.FinancialProps, err = json.Marshal(d.Financial); err != nil {
			return models.Record{}, fmt.Errorf("failed to marshal financial props: %w", err)
		}
	}
	return m, nil
}

// ToDomainRecord converts a model Record to a domain Record, deserialising
// the property documents.
func ToDomainRecord(m models.Record) (domain.Record, error) {
	d := domain.Record{
		RecordID: m.RecordID,
		BookID:   m.BookID,
		Date:     m.RecordDate,
		Amount:   m.Amount,
		Credit: domain.AccountRef{
			AccountID:   m.CreditID,
			Name:        m.CreditName,
			AccountType: domain.AccountType(m.CreditType),
		},
		Debit: domain.AccountRef{
			AccountID:   m.DebitID,
			Name:        m.DebitName,
			AccountType: domain.AccountType(m.DebitType),
		},
		Description: m.Description,
		Checked:     m.Checked,
		Locked:      m.Locked,
		RemoteIDs:   m.RemoteIDs,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}

	if len(m.PurchaseProps) > 0 {
		d.Purchase = &domain.PurchaseProps{}
		if err := json.Unmarshal(m.PurchaseProps, d.Purchase); err != nil {
			return domain.Record{}, fmt.Errorf("failed to unmarshal purchase props of record %s: %w", m.RecordID, err)
		}
	}
	if len(m.SaleProps) > 0 {
		d.Sale = &domain.SaleProps{}
		if err := json.Unmarshal(m.SaleProps, d.Sale); err != nil {
			return domain.Record{}, fmt.Errorf("failed to unmarshal sale props of record %s: %w", m.RecordID, err)
		}
	}
	if len(m.FinancialProps) > 0 {
		d.Financial = &domain.FinancialProps{}
		if err := json.Unmarshal(m.FinancialProps, d.Financial); err != nil {
			return domain.Record{}, fmt.Errorf("failed to unmarshal financial props of record %s: %w", m.RecordID, err)
		}
	}
	return d, nil
}
