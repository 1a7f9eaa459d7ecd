package models

import "time"

// Task represents one row in the tasks table.
type Task struct {
	TaskID     string     `db:"task_id"`
	BookID     string     `db:"book_id"`
	AccountID  string     `db:"account_id"`
	Kind       string     `db:"kind"`
	Status     string     `db:"status"`
	Error      string     `db:"error"`
	CreatedAt  time.Time  `db:"created_at"`
	FinishedAt *time.Time `db:"finished_at"` // Nullable
}
