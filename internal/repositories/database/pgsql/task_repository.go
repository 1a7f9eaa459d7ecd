package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils/mapping"
)

type PgxTaskRepository struct {
	BaseRepository
}

// newPgxTaskRepository creates a new repository for background task data.
func newPgxTaskRepository(pool *pgxpool.Pool) portsrepo.TaskRepository {
	return &PgxTaskRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TaskRepository = (*PgxTaskRepository)(nil)

// CountPendingTasks returns how many tasks for the book are still pending
// or running.
func (r *PgxTaskRepository) CountPendingTasks(ctx context.Context, bookID string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE book_id = $1 AND status IN ('PENDING', 'RUNNING');`

	var count int
	if err := r.Pool.QueryRow(ctx, query, bookID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending tasks of book %s: %w", bookID, err)
	}
	return count, nil
}

// SaveTask persists a new task.
func (r *PgxTaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	m := mapping.ToModelTask(task)

	query := `
		INSERT INTO tasks (task_id, book_id, account_id, kind, status, error, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TaskID,
		m.BookID,
		m.AccountID,
		m.Kind,
		m.Status,
		m.Error,
		m.CreatedAt,
		m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.TaskID, err)
	}
	return nil
}

// UpdateTaskStatus moves a task through its lifecycle. taskErr is stored on
// failed tasks.
func (r *PgxTaskRepository) UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, taskErr string) error {
	var finishedAt *time.Time
	if status == domain.TaskDone || status == domain.TaskFailed {
		now := time.Now()
		finishedAt = &now
	}

	query := `UPDATE tasks SET status = $2, error = $3, finished_at = $4 WHERE task_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, taskID, string(status), taskErr, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
