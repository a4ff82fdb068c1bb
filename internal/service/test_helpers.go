// internal/service/test_helpers.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flasktaskr/flasktaskr/internal/database"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/repository"
	"github.com/flasktaskr/flasktaskr/pkg/auth"
)

// TestHelpers provides common test utilities backed by an in-memory SQLite
// database.
type TestHelpers struct {
	t               *testing.T
	db              *sqlx.DB
	passwordManager *auth.PasswordManager
}

// NewTestHelpers opens a fresh in-memory database with the schema applied.
func NewTestHelpers(t *testing.T) *TestHelpers {
	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))

	return &TestHelpers{
		t:               t,
		db:              db,
		passwordManager: auth.NewPasswordManager(),
	}
}

func (h *TestHelpers) DB() *sqlx.DB {
	return h.db
}

func (h *TestHelpers) UserRepo() *repository.UserRepository {
	return repository.NewUserRepository(h.db)
}

func (h *TestHelpers) TaskRepo() *repository.TaskRepository {
	return repository.NewTaskRepository(h.db)
}

// CreateTestUser persists a standard user with a properly hashed password.
func (h *TestHelpers) CreateTestUser(name, email, password string) *models.User {
	return h.createUser(name, email, password, models.RoleUser)
}

// CreateAdminUser persists an admin user.
func (h *TestHelpers) CreateAdminUser(name, email, password string) *models.User {
	return h.createUser(name, email, password, models.RoleAdmin)
}

func (h *TestHelpers) createUser(name, email, password string, role models.Role) *models.User {
	digest, err := h.passwordManager.HashPassword(password)
	require.NoError(h.t, err)

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: digest,
		Role:     role,
	}
	require.NoError(h.t, h.UserRepo().Create(context.Background(), user))
	return user
}

// CreateTestTask persists an open task owned by the given user.
func (h *TestHelpers) CreateTestTask(name string, dueDate time.Time, priority int, ownerID int64) *models.Task {
	task := &models.Task{
		Name:     name,
		DueDate:  dueDate,
		Priority: priority,
		UserID:   ownerID,
	}
	require.NoError(h.t, h.TaskRepo().Create(context.Background(), task))
	return task
}

// Identity returns the session identity a logged-in user would carry.
func Identity(u *models.User) models.Identity {
	return models.Identity{
		Authenticated: true,
		UserID:        u.ID,
		Role:          u.Role,
		Name:          u.Name,
	}
}
