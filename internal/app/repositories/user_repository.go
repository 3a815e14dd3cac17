package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/pkg/apperrors"
	"github.com/schoolhub/backend/internal/pkg/dberrors"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByPublicID(ctx context.Context, identifier string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, temporary bool) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	UserIDExists(ctx context.Context, userID string) (bool, error)
}

const userColumns = `id, user_id, username, password, role, email, first_name, last_name,
	is_temporary_password, last_login, created_at, updated_at`

// PostgresUserRepository is the pgx-backed UserRepository
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// Create inserts a new user and fills in the generated fields. Unique
// violations are translated into the conflict error naming the field.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Email != nil {
		lowered := strings.ToLower(*user.Email)
		user.Email = &lowered
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (user_id, username, password, role, email, first_name, last_name, is_temporary_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		user.UserID, user.Username, user.Password, user.Role, user.Email,
		user.FirstName, user.LastName, user.IsTemporaryPassword).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return apperrors.ErrUsernameTaken
		}
		if dberrors.IsDuplicateConstraintError(err, "users_user_id_key") {
			return apperrors.ErrUserIDTaken
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by internal ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username (case-sensitive)
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByPublicID resolves an identifier against either the human-facing
// user_id or the internal id.
func (r *PostgresUserRepository) GetByPublicID(ctx context.Context, identifier string) (*models.User, error) {
	internalID, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		internalID = 0
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1 OR id = $2`, identifier, internalID)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.UserID, &user.Username, &user.Password, &user.Role, &user.Email,
		&user.FirstName, &user.LastName, &user.IsTemporaryPassword,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return user, nil
}

// List returns all users, newest-created first
func (r *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

// ListByRole returns users with the given role, newest-created first
func (r *PostgresUserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, role)
}

func (r *PostgresUserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.UserID, &user.Username, &user.Password, &user.Role, &user.Email,
			&user.FirstName, &user.LastName, &user.IsTemporaryPassword,
			&user.LastLogin, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// UpdatePassword replaces the stored hash and updates the temporary flag
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, temporary bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password = $1, is_temporary_password = $2, updated_at = NOW()
		WHERE id = $3`,
		passwordHash, temporary, id)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin stamps the last successful login time
func (r *PostgresUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login = $1, updated_at = NOW()
		WHERE id = $2`,
		time.Now(), id)

	if err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}

	return nil
}

// Delete permanently removes a user
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UsernameExists checks if a username is already taken
func (r *PostgresUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// UserIDExists checks if a human-facing user ID is already assigned
func (r *PostgresUserRepository) UserIDExists(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`, userID)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return exists, nil
}
