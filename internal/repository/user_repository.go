// internal/repository/user_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/flasktaskr/flasktaskr/internal/models"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in the assigned id. A name or email
// collision is reported as ErrDuplicate, never as a raw driver error.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	if r.db.DriverName() == "postgres" {
		query := r.db.Rebind(`INSERT INTO users (name, email, password, role)
			VALUES (?, ?, ?, ?) RETURNING id`)
		err := r.db.QueryRowxContext(ctx, query, u.Name, u.Email, u.Password, u.Role).Scan(&u.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	}

	query := r.db.Rebind(`INSERT INTO users (name, email, password, role)
		VALUES (?, ?, ?, ?)`)
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.Password, u.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

// GetByName is an exact, case-sensitive lookup.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	query := r.db.Rebind(`SELECT id, name, email, password, role FROM users WHERE name = ?`)
	if err := r.db.GetContext(ctx, &u, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	query := r.db.Rebind(`SELECT id, name, email, password, role FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// Exists reports whether a user with the given name or email is already
// registered.
func (r *UserRepository) Exists(ctx context.Context, name, email string) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE name = ? OR email = ?`)
	if err := r.db.GetContext(ctx, &count, query, name, email); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
