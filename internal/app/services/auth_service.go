package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/repositories"
	"github.com/schoolhub/backend/internal/pkg/apperrors"
	"github.com/schoolhub/backend/internal/pkg/auth"
)

// AuthService defines authentication operations
type AuthService interface {
	// Login verifies credentials and returns the user plus a signed token.
	// Unknown usernames and wrong passwords fail identically.
	Login(ctx context.Context, username, password string) (*models.User, string, error)

	// ChangePassword rotates the caller's password after verifying the
	// current one, clearing the temporary-password flag.
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenService
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenService, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Same failure as a wrong password: no user-existence signal
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login lookup failed: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	now := time.Now()
	user.LastLogin = &now

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("User logged in")

	return user, token, nil
}

func (s *authService) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if !auth.CheckPassword(user.Password, currentPassword) {
		return apperrors.ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info().
		Str("username", user.Username).
		Msg("Password changed")

	return nil
}
