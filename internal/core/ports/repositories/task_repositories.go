package repositories

import (
	"context"

	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
)

// TaskReader defines read operations for background task data.
type TaskReader interface {
	// CountPendingTasks returns how many tasks for the book are still
	// pending or running.
	CountPendingTasks(ctx context.Context, bookID string) (int, error)
}

// TaskWriter defines write operations for background task data.
type TaskWriter interface {
	// SaveTask persists a new task.
	SaveTask(ctx context.Context, task domain.Task) error

	// UpdateTaskStatus moves a task through its lifecycle. taskErr is
	// stored on failed tasks.
	UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, taskErr string) error
}

// TaskRepository combines all task-related repository interfaces.
type TaskRepository interface {
	TaskReader
	TaskWriter
}
