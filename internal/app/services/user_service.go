package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/repositories"
	"github.com/schoolhub/backend/internal/pkg/apperrors"
	"github.com/schoolhub/backend/internal/pkg/auth"
)

// userIDAttempts bounds the generate-then-insert retry loop. The unique
// index on user_id is the source of truth; the pre-check only shortcuts
// obvious collisions.
const userIDAttempts = 5

// NewUserInput carries the admin-provided fields for user creation
type NewUserInput struct {
	Username  string
	Role      models.Role
	Email     string
	FirstName string
	LastName  string
}

// UserService defines admin-facing user administration operations
type UserService interface {
	// CreateUser provisions a user with a generated user ID and an
	// 8-character temporary password, returned in plaintext exactly once.
	CreateUser(ctx context.Context, input NewUserInput) (*models.User, string, error)

	// ListUsers returns all users newest-created first, optionally
	// filtered by role.
	ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error)

	// DeleteUser removes the user matching the given userId or internal
	// id. Admin records are refused.
	DeleteUser(ctx context.Context, identifier string) error
}

type userService struct {
	userRepo repositories.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, input NewUserInput) (*models.User, string, error) {
	taken, err := s.userRepo.UsernameExists(ctx, input.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, "", apperrors.ErrUsernameTaken
	}

	tempPassword := auth.GenerateTempPassword()
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash temporary password: %w", err)
	}

	var email *string
	if input.Email != "" {
		email = &input.Email
	}

	// Generate-then-check is racy by nature; the insert below is the
	// backstop, retried with a fresh candidate on a user_id collision.
	for attempt := 0; attempt < userIDAttempts; attempt++ {
		candidate := auth.GenerateUserIDCandidate(input.Role)

		exists, err := s.userRepo.UserIDExists(ctx, candidate)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check user ID: %w", err)
		}
		if exists {
			continue
		}

		user := &models.User{
			UserID:              &candidate,
			Username:            input.Username,
			Password:            hash,
			Role:                input.Role,
			Email:               email,
			FirstName:           input.FirstName,
			LastName:            input.LastName,
			IsTemporaryPassword: true,
		}

		err = s.userRepo.Create(ctx, user)
		if errors.Is(err, apperrors.ErrUserIDTaken) {
			continue
		}
		if err != nil {
			return nil, "", err
		}

		s.logger.Info().
			Str("username", user.Username).
			Str("userId", candidate).
			Str("role", string(user.Role)).
			Msg("User created")

		return user, tempPassword, nil
	}

	return nil, "", apperrors.ErrUserIDTaken
}

func (s *userService) ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error) {
	if role != nil {
		return s.userRepo.ListByRole(ctx, *role)
	}
	return s.userRepo.List(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, identifier string) error {
	user, err := s.userRepo.GetByPublicID(ctx, identifier)
	if err != nil {
		return err
	}

	if user.Role == models.RoleAdmin {
		return apperrors.ErrAdminProtected
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("username", user.Username).
		Str("id", user.PublicID()).
		Msg("User deleted")

	return nil
}
