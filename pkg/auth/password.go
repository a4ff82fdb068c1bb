// pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword = errors.New("password does not meet requirements")

	// ErrPasswordMismatch means the digest is well-formed bcrypt output but
	// the candidate does not match. Safe to surface as invalid credentials.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash means the stored digest is not bcrypt output at all
	// (e.g. a plaintext value inserted straight into the database). Callers
	// must treat this as a server fault, not a failed login.
	ErrMalformedHash = errors.New("stored password digest is malformed")
)

// PasswordManager handles password hashing and verification
type PasswordManager struct {
	minLength int
	maxLength int
	cost      int
}

// NewPasswordManager creates a new password manager with default settings
func NewPasswordManager() *PasswordManager {
	return &PasswordManager{
		minLength: 6,
		maxLength: 40,
		cost:      12,
	}
}

// HashPassword hashes a password using bcrypt. The salt is randomized per
// call, so two hashes of the same input never compare equal.
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	if err := pm.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword verifies a candidate password against a stored digest.
// Returns nil on match, ErrPasswordMismatch on a clean non-match, and
// ErrMalformedHash when the digest itself cannot be parsed.
func (pm *PasswordManager) ComparePassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("%w: %v", ErrMalformedHash, err)
}

// ValidatePassword checks that a password fits the accepted length window
func (pm *PasswordManager) ValidatePassword(password string) error {
	if len(password) < pm.minLength {
		return fmt.Errorf("%w: minimum length is %d characters", ErrWeakPassword, pm.minLength)
	}
	if len(password) > pm.maxLength {
		return fmt.Errorf("%w: maximum length is %d characters", ErrWeakPassword, pm.maxLength)
	}
	return nil
}

// ValidateEmail validates an email address format and length
func ValidateEmail(email string) error {
	if len(email) < 6 {
		return errors.New("email must be at least 6 characters")
	}
	if len(email) > 40 {
		return errors.New("email must not exceed 40 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}

	return nil
}

// ValidateUsername validates a username
func ValidateUsername(username string) error {
	if len(username) < 6 {
		return errors.New("username must be at least 6 characters")
	}

	if len(username) > 25 {
		return errors.New("username must not exceed 25 characters")
	}

	return nil
}
