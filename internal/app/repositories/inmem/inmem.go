// Package inmem provides an in-memory UserRepository used by tests and
// local experimentation. It mirrors the Postgres repository's contract,
// including the conflict errors for duplicate usernames and user IDs.
package inmem

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/pkg/apperrors"
)

// UserRepository is a map-backed repositories.UserRepository
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*models.User
}

// NewUserRepository creates an empty in-memory repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID: 1,
		users:  make(map[int64]*models.User),
	}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return apperrors.ErrUsernameTaken
		}
		if user.UserID != nil && existing.UserID != nil && *existing.UserID == *user.UserID {
			return apperrors.ErrUserIDTaken
		}
	}

	if user.Email != nil {
		lowered := strings.ToLower(*user.Email)
		user.Email = &lowered
	}

	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) GetByPublicID(_ context.Context, identifier string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	internalID, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		internalID = 0
	}

	for _, user := range r.users {
		if (user.UserID != nil && *user.UserID == identifier) || user.ID == internalID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*models.User) bool { return true }), nil
}

func (r *UserRepository) ListByRole(_ context.Context, role models.Role) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(u *models.User) bool { return u.Role == role }), nil
}

// collect returns copies sorted newest-created first. Callers hold the lock.
func (r *UserRepository) collect(match func(*models.User) bool) []*models.User {
	var users []*models.User
	for _, user := range r.users {
		if match(user) {
			copied := *user
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (r *UserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string, temporary bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Password = passwordHash
	user.IsTemporaryPassword = temporary
	user.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) UserIDExists(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.UserID != nil && *user.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
