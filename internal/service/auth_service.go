// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/repository"
	"github.com/flasktaskr/flasktaskr/pkg/auth"
)

type AuthService struct {
	users           *repository.UserRepository
	passwordManager *auth.PasswordManager
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{
		users:           users,
		passwordManager: auth.NewPasswordManager(),
	}
}

// Register creates a new user account. The role is always RoleUser; callers
// cannot supply it.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirm string) (*models.User, error) {
	if err := s.validateRegistration(name, email, password, confirm); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, name, email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	digest, err := s.passwordManager.HashPassword(password)
	if err != nil {
		return nil, NewValidationError("password", err.Error())
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: digest,
		Role:     models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The existence pre-check races with concurrent registrations; the
		// constraint is the authority.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("User registered")
	return user, nil
}

// Authenticate looks the user up by name and verifies the password. An
// unknown name and a wrong password both come back as ErrInvalidCredentials.
// A malformed stored digest is a server fault and propagates as-is.
func (s *AuthService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Login failed", zap.String("name", name))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.passwordManager.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			logger.Warn("Login failed", zap.String("name", name))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}

	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) validateRegistration(name, email, password, confirm string) error {
	if name == "" {
		return NewValidationError("name", "this field is required")
	}
	if email == "" {
		return NewValidationError("email", "this field is required")
	}
	if password == "" {
		return NewValidationError("password", "this field is required")
	}

	if err := auth.ValidateUsername(name); err != nil {
		return NewValidationError("name", err.Error())
	}
	if err := auth.ValidateEmail(email); err != nil {
		return NewValidationError("email", err.Error())
	}
	if err := s.passwordManager.ValidatePassword(password); err != nil {
		return NewValidationError("password", err.Error())
	}
	if confirm != password {
		return NewValidationError("confirm", "passwords must match")
	}

	return nil
}
