// internal/database/schema.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role     TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS tasks (
	task_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	due_date    DATE NOT NULL,
	priority    INTEGER NOT NULL,
	posted_date TIMESTAMP NOT NULL,
	status      INTEGER NOT NULL,
	user_id     INTEGER NOT NULL REFERENCES users (id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role     TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS tasks (
	task_id     BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	due_date    DATE NOT NULL,
	priority    INTEGER NOT NULL,
	posted_date TIMESTAMPTZ NOT NULL,
	status      INTEGER NOT NULL,
	user_id     BIGINT NOT NULL REFERENCES users (id)
);
`

// Migrate creates the users and tasks tables if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := schemaSQLite
	if db.DriverName() == "postgres" {
		schema = schemaPostgres
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	logger.Info("Database schema is up to date")
	return nil
}

// Seed bootstraps the admin account and two sample tasks. It is a no-op when
// any user already exists, so it is safe to run on every start.
func Seed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	// The registration form's length rule does not apply to the bootstrap
	// account, so hash directly instead of going through HashPassword.
	raw, err := bcrypt.GenerateFromPassword([]byte("admin"), 12)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	digest := string(raw)

	var adminID int64
	if db.DriverName() == "postgres" {
		query := db.Rebind(`INSERT INTO users (name, email, password, role)
			VALUES (?, ?, ?, ?) RETURNING id`)
		if err := db.QueryRowxContext(ctx, query, "admin", "ad@min.com", digest, models.RoleAdmin).Scan(&adminID); err != nil {
			return fmt.Errorf("seed: create admin: %w", err)
		}
	} else {
		query := db.Rebind(`INSERT INTO users (name, email, password, role)
			VALUES (?, ?, ?, ?)`)
		res, err := db.ExecContext(ctx, query, "admin", "ad@min.com", digest, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("seed: create admin: %w", err)
		}
		adminID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("seed: create admin: %w", err)
		}
	}

	samples := []struct {
		name     string
		dueDate  time.Time
		priority int
	}{
		{"Finish this tutorial", time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC), 10},
		{"Bips", time.Date(2044, 1, 1, 0, 0, 0, 0, time.UTC), 9},
	}

	insert := db.Rebind(`INSERT INTO tasks (name, due_date, priority, posted_date, status, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, s := range samples {
		_, err := db.ExecContext(ctx, insert,
			s.name, s.dueDate, s.priority, time.Now().UTC(), models.StatusOpen, adminID)
		if err != nil {
			return fmt.Errorf("seed: create task %q: %w", s.name, err)
		}
	}

	logger.Info("Seeded admin user and sample tasks")
	return nil
}
