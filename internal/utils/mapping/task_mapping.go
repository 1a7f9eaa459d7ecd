package mapping

import (
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	"github.com/ledgerbots/cost_of_sales_app/internal/models"
)

// ToModelTask converts a domain Task to a model Task
func ToModelTask(d domain.Task) models.Task {
	return models.Task{
		TaskID:     d.TaskID,
		BookID:     d.BookID,
		AccountID:  d.AccountID,
		Kind:       string(d.Kind),
		Status:     string(d.Status),
		Error:      d.Error,
		CreatedAt:  d.CreatedAt,
		FinishedAt: d.FinishedAt,
	}
}

// ToDomainTask converts a model Task to a domain Task
func ToDomainTask(m models.Task) domain.Task {
	return domain.Task{
		TaskID:     m.TaskID,
		BookID:     m.BookID,
		AccountID:  m.AccountID,
		Kind:       domain.TaskKind(m.Kind),
		Status:     domain.TaskStatus(m.Status),
		Error:      m.Error,
		CreatedAt:  m.CreatedAt,
		FinishedAt: m.FinishedAt,
	}
}
