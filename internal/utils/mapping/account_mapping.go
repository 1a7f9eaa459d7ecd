package mapping

import (
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		BookID:       d.BookID,
		Name:         d.Name,
		AccountType:  string(d.AccountType),
		NeedsRebuild: d.NeedsRebuild,
		COGSCalcDate: d.COGSCalcDate,
		Archived:     d.Archived,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account. Groups are
// loaded separately.
func ToDomainAccount(m models.Account, groups []models.Group) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		BookID:       m.BookID,
		Name:         m.Name,
		AccountType:  domain.AccountType(m.AccountType),
		Groups:       ToDomainGroupSlice(groups),
		NeedsRebuild: m.NeedsRebuild,
		COGSCalcDate: m.COGSCalcDate,
		Archived:     m.Archived,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelGroup converts a domain Group to a model Group
func ToModelGroup(d domain.Group) models.Group {
	return models.Group{
		GroupID:      d.GroupID,
		BookID:       d.BookID,
		Name:         d.Name,
		ExchangeCode: d.ExchangeCode,
		Hidden:       d.Hidden,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGroup converts a model Group to a domain Group
func ToDomainGroup(m models.Group) domain.Group {
	return domain.Group{
		GroupID:      m.GroupID,
		BookID:       m.BookID,
		Name:         m.Name,
		ExchangeCode: m.ExchangeCode,
		Hidden:       m.Hidden,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGroupSlice converts a slice of model Groups to domain Groups
func ToDomainGroupSlice(ms []models.Group) []domain.Group {
	if len(ms) == 0 {
		return nil
	}
	groups := make([]domain.Group, len(ms))
	for i, m := range ms {
		groups[i] = ToDomainGroup(m)
	}
	return groups
}
