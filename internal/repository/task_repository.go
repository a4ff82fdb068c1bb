// internal/repository/task_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flasktaskr/flasktaskr/internal/models"
)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `task_id, name, due_date, priority, posted_date, status, user_id`

// Create inserts a new task. PostedDate is assigned here, server-side, and
// the status is forced to open regardless of what the caller set.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	t.PostedDate = time.Now().UTC()
	t.Status = models.StatusOpen

	if r.db.DriverName() == "postgres" {
		query := r.db.Rebind(`INSERT INTO tasks (name, due_date, priority, posted_date, status, user_id)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING task_id`)
		err := r.db.QueryRowxContext(ctx, query,
			t.Name, t.DueDate, t.Priority, t.PostedDate, t.Status, t.UserID).Scan(&t.TaskID)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	}

	query := r.db.Rebind(`INSERT INTO tasks (name, due_date, priority, posted_date, status, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	res, err := r.db.ExecContext(ctx, query,
		t.Name, t.DueDate, t.Priority, t.PostedDate, t.Status, t.UserID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	t.TaskID = id
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE task_id = ?`)
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// ListByStatus returns every task in the given status, ascending by due date.
func (r *TaskRepository) ListByStatus(ctx context.Context, status models.Status) ([]*models.Task, error) {
	tasks := []*models.Task{}
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE status = ? ORDER BY due_date ASC`)
	if err := r.db.SelectContext(ctx, &tasks, query, status); err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	return tasks, nil
}

// Page returns a slice of all tasks for the read-only API, ordered by id so
// the listing is stable across requests.
func (r *TaskRepository) Page(ctx context.Context, offset, limit int) ([]*models.Task, error) {
	tasks := []*models.Task{}
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks ORDER BY task_id ASC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &tasks, query, limit, offset); err != nil {
		return nil, fmt.Errorf("page tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus flips a task's status in place.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	query := r.db.Rebind(`UPDATE tasks SET status = ? WHERE task_id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE task_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
