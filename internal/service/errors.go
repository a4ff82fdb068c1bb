// internal/service/errors.go
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both an unknown name and a wrong
	// password. The route layer must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is the registration conflict: name or email taken.
	ErrUserExists = errors.New("that username and/or email already exists")

	// ErrForbidden means the identity may not mutate the task. The write is
	// never attempted.
	ErrForbidden = errors.New("task does not belong to this user")

	// ErrNotFound is re-exported at the service boundary so handlers do not
	// reach into the repository package.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a recoverable per-field form error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
