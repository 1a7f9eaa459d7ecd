package domain

import "time"

// TaskKind identifies the background work a task performs.
type TaskKind string

const (
	// TaskRebuild is a full, non-incremental recomputation of one
	// account's FIFO history.
	TaskRebuild TaskKind = "REBUILD"
)

// TaskStatus is the lifecycle state of a background task.
type TaskStatus string

const (
	TaskPending TaskStatus = "PENDING"
	TaskRunning TaskStatus = "RUNNING"
	TaskDone    TaskStatus = "DONE"
	TaskFailed  TaskStatus = "FAILED"
)

// Task is a unit of asynchronous work against a book. Tasks are persisted
// so that validation can refuse to start a calculation while work is still
// pending on the inventory book.
type Task struct {
	TaskID     string     `json:"taskID"`
	BookID     string     `json:"bookID"`
	AccountID  string     `json:"accountID"`
	Kind       TaskKind   `json:"kind"`
	Status     TaskStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Pending reports whether the task still counts against the book's
// pending work.
func (t Task) Pending() bool {
	return t.Status == TaskPending || t.Status == TaskRunning
}
