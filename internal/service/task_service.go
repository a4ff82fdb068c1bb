// internal/service/task_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/repository"
)

// DueDateLayout is the form wire format for due dates: MM/DD/YYYY.
const DueDateLayout = "01/02/2006"

// APIPageSize is the fixed page size of the public listing API.
const APIPageSize = 10

type TaskService struct {
	tasks *repository.TaskRepository
}

func NewTaskService(tasks *repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// OpenTasks returns every open task, soonest due first.
func (s *TaskService) OpenTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByStatus(ctx, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

// ClosedTasks returns every closed task, soonest due first.
func (s *TaskService) ClosedTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByStatus(ctx, models.StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("list closed tasks: %w", err)
	}
	return tasks, nil
}

// AddTask validates the form input and persists a new open task owned by the
// caller. The posted date is assigned by the repository, server-side.
func (s *TaskService) AddTask(ctx context.Context, identity models.Identity, name, dueDate, priority string) (*models.Task, error) {
	if name == "" {
		return nil, NewValidationError("name", "this field is required")
	}
	if dueDate == "" {
		return nil, NewValidationError("due_date", "this field is required")
	}

	due, err := time.Parse(DueDateLayout, dueDate)
	if err != nil {
		return nil, NewValidationError("due_date", "must be a date in MM/DD/YYYY format")
	}

	prio, err := parsePriority(priority)
	if err != nil {
		return nil, NewValidationError("priority", err.Error())
	}

	task := &models.Task{
		Name:     name,
		DueDate:  due,
		Priority: prio,
		UserID:   identity.UserID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}

	logger.Info("Task created", zap.Int64("task_id", task.TaskID), zap.Int64("user_id", task.UserID))
	return task, nil
}

// CompleteTask closes the task iff the identity passes the ownership policy.
// On a policy denial nothing is written.
func (s *TaskService) CompleteTask(ctx context.Context, identity models.Identity, id int64) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if !MayModify(identity, task) {
		return nil, ErrForbidden
	}

	if err := s.tasks.UpdateStatus(ctx, id, models.StatusClosed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("complete task: %w", err)
	}

	task.Status = models.StatusClosed
	return task, nil
}

// DeleteTask removes the task iff the identity passes the ownership policy.
// The removed task is returned so callers can name it in a notice.
func (s *TaskService) DeleteTask(ctx context.Context, identity models.Identity, id int64) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if !MayModify(identity, task) {
		return nil, ErrForbidden
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}

	return task, nil
}

// GetTask fetches a single task for the read-only API.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return s.getTask(ctx, id)
}

// PageTasks returns the fixed first page of tasks for the listing API.
func (s *TaskService) PageTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.tasks.Page(ctx, 0, APIPageSize)
	if err != nil {
		return nil, fmt.Errorf("page tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) getTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func parsePriority(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("this field is required")
	}

	prio, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be a number between 1 and 10")
	}
	if prio < 1 || prio > 10 {
		return 0, errors.New("must be a number between 1 and 10")
	}
	return prio, nil
}
