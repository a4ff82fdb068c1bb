// internal/models/task.go
package models

import "time"

// Status of a task. The only documented transition is open -> closed.
type Status int

const (
	StatusClosed Status = 0
	StatusOpen   Status = 1
)

// Task is a single tracked item. UserID is the owner, set at creation and
// never changed afterwards.
type Task struct {
	TaskID     int64     `db:"task_id" json:"task_id"`
	Name       string    `db:"name" json:"name"`
	DueDate    time.Time `db:"due_date" json:"due_date"`
	Priority   int       `db:"priority" json:"priority"`
	PostedDate time.Time `db:"posted_date" json:"posted_date"`
	Status     Status    `db:"status" json:"status"`
	UserID     int64     `db:"user_id" json:"user_id"`
}
