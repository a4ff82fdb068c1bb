// internal/repository/repository_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flasktaskr/flasktaskr/internal/database"
	"github.com/flasktaskr/flasktaskr/internal/models"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func createUser(t *testing.T, users *UserRepository, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "not-a-real-digest"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func createTask(t *testing.T, tasks *TaskRepository, name string, due time.Time, ownerID int64) *models.Task {
	t.Helper()
	task := &models.Task{Name: name, DueDate: due, Priority: 1, UserID: ownerID}
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)

	u := createUser(t, users, "tonyhat", "tony@hat.com")
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role, "role defaults to user")

	got, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tonyhat", got.Name)
	assert.Equal(t, "tony@hat.com", got.Email)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	createUser(t, users, "tonyhat", "tony@hat.com")

	tests := []struct {
		name string
		user *models.User
		want error
	}{
		{"duplicate name", &models.User{Name: "tonyhat", Email: "other@hat.com", Password: "x"}, ErrDuplicate},
		{"duplicate email", &models.User{Name: "otherguy", Email: "tony@hat.com", Password: "x"}, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.Create(context.Background(), tt.user)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserRepository_GetByName(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	createUser(t, users, "tonyhat", "tony@hat.com")

	got, err := users.GetByName(context.Background(), "tonyhat")
	require.NoError(t, err)
	assert.Equal(t, "tonyhat", got.Name)

	// Exact match only.
	_, err = users.GetByName(context.Background(), "TonyHat")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.GetByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	createUser(t, users, "tonyhat", "tony@hat.com")

	tests := []struct {
		name, userName, email string
		want                  bool
	}{
		{"name taken", "tonyhat", "fresh@hat.com", true},
		{"email taken", "freshguy", "tony@hat.com", true},
		{"both free", "freshguy", "fresh@hat.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := users.Exists(context.Background(), tt.userName, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestTaskRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	owner := createUser(t, users, "tonyhat", "tony@hat.com")

	task := &models.Task{
		Name:     "Goto the bank",
		DueDate:  time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC),
		Priority: 1,
		Status:   models.StatusClosed, // must be overridden
		UserID:   owner.ID,
	}
	require.NoError(t, tasks.Create(context.Background(), task))

	assert.NotZero(t, task.TaskID)
	assert.Equal(t, models.StatusOpen, task.Status, "new tasks always start open")
	assert.False(t, task.PostedDate.IsZero())

	got, err := tasks.GetByID(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Goto the bank", got.Name)
	assert.Equal(t, owner.ID, got.UserID)
}

func TestTaskRepository_ListByStatus_OrdersByDueDate(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	owner := createUser(t, users, "tonyhat", "tony@hat.com")

	third := createTask(t, tasks, "third", time.Date(2044, 1, 1, 0, 0, 0, 0, time.UTC), owner.ID)
	first := createTask(t, tasks, "first", time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), owner.ID)
	second := createTask(t, tasks, "second", time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC), owner.ID)

	open, err := tasks.ListByStatus(context.Background(), models.StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, first.TaskID, open[0].TaskID)
	assert.Equal(t, second.TaskID, open[1].TaskID)
	assert.Equal(t, third.TaskID, open[2].TaskID)

	closed, err := tasks.ListByStatus(context.Background(), models.StatusClosed)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestTaskRepository_Page(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	owner := createUser(t, users, "tonyhat", "tony@hat.com")

	var created []*models.Task
	for i := 0; i < 12; i++ {
		created = append(created, createTask(t, tasks, "task",
			time.Date(2030, 1, 1+i, 0, 0, 0, 0, time.UTC), owner.ID))
	}

	page, err := tasks.Page(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	// Stable id order.
	assert.Equal(t, created[0].TaskID, page[0].TaskID)
	assert.Equal(t, created[9].TaskID, page[9].TaskID)

	rest, err := tasks.Page(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestTaskRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	owner := createUser(t, users, "tonyhat", "tony@hat.com")
	task := createTask(t, tasks, "Goto the bank", time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), owner.ID)

	require.NoError(t, tasks.UpdateStatus(context.Background(), task.TaskID, models.StatusClosed))

	got, err := tasks.GetByID(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	err = tasks.UpdateStatus(context.Background(), 9999, models.StatusClosed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	owner := createUser(t, users, "tonyhat", "tony@hat.com")
	task := createTask(t, tasks, "Goto the bank", time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), owner.ID)

	require.NoError(t, tasks.Delete(context.Background(), task.TaskID))

	_, err := tasks.GetByID(context.Background(), task.TaskID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = tasks.Delete(context.Background(), task.TaskID)
	assert.ErrorIs(t, err, ErrNotFound)
}
