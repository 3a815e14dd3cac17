package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
)

// Session is the client-side persisted copy of the token and user profile.
// It hydrates from disk on load and clears on logout; the server remains
// the authority — any stale session simply fails with a 401 on the next
// call.
type Session struct {
	path string

	Token string        `json:"token"`
	User  *dto.UserView `json:"user,omitempty"`
}

// DefaultSessionPath returns the session file location under the user
// config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "schoolctl", "session.json"), nil
}

// LoadSession hydrates a session from the given file. A missing file
// yields an empty (unauthenticated) session, not an error.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	s.path = path

	return s, nil
}

// Save persists the session to disk, creating the parent directory if
// needed. The file is user-readable only since it holds a bearer token.
func (s *Session) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear wipes the in-memory state and removes the persisted file.
func (s *Session) Clear() error {
	s.Token = ""
	s.User = nil

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Active reports whether a token and user profile are present.
func (s *Session) Active() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the stored role, validated against the closed role set.
func (s *Session) Role() (models.Role, error) {
	if s.User == nil {
		return "", errors.New("no active session")
	}
	return models.ParseRole(s.User.Role)
}

// AllowedFor reports whether the session's role is in the given set. This
// is a UX convenience only: the server re-checks on every request.
func (s *Session) AllowedFor(roles ...models.Role) bool {
	role, err := s.Role()
	if err != nil {
		return false
	}
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}
