package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
)

func sessionFixturePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "schoolctl", "session.json")
}

func TestSessionRoundTrip(t *testing.T) {
	path := sessionFixturePath(t)

	session, err := LoadSession(path)
	require.NoError(t, err)
	assert.False(t, session.Active(), "fresh session should be inactive")

	session.Token = "some-token"
	session.User = &dto.UserView{ID: "TEA1234", Username: "jdoe", Role: "teacher"}
	require.NoError(t, session.Save())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.True(t, loaded.Active())
	assert.Equal(t, "some-token", loaded.Token)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "jdoe", loaded.User.Username)
}

func TestSessionFilePermissions(t *testing.T) {
	path := sessionFixturePath(t)

	session, err := LoadSession(path)
	require.NoError(t, err)
	session.Token = "some-token"
	session.User = &dto.UserView{ID: "1", Username: "jdoe", Role: "admin"}
	require.NoError(t, session.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "session file holds a token")
}

func TestSessionClear(t *testing.T) {
	path := sessionFixturePath(t)

	session, err := LoadSession(path)
	require.NoError(t, err)
	session.Token = "some-token"
	session.User = &dto.UserView{ID: "1", Username: "jdoe", Role: "admin"}
	require.NoError(t, session.Save())

	require.NoError(t, session.Clear())
	assert.False(t, session.Active())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "session file should be removed")

	// Clearing an already-clear session is fine
	require.NoError(t, session.Clear())
}

func TestSessionCorruptFile(t *testing.T) {
	path := sessionFixturePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadSession(path)
	assert.Error(t, err)
}

func TestSessionAllowedFor(t *testing.T) {
	session := &Session{
		Token: "some-token",
		User:  &dto.UserView{ID: "TEA1234", Username: "jdoe", Role: "teacher"},
	}

	assert.True(t, session.AllowedFor(models.RoleTeacher))
	assert.True(t, session.AllowedFor(models.RoleAdmin, models.RoleTeacher))
	assert.False(t, session.AllowedFor(models.RoleAdmin))

	role, err := session.Role()
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, role)
}

func TestSessionAllowedForInvalidState(t *testing.T) {
	empty := &Session{}
	assert.False(t, empty.AllowedFor(models.RoleAdmin))
	_, err := empty.Role()
	assert.Error(t, err)

	tampered := &Session{
		Token: "some-token",
		User:  &dto.UserView{ID: "1", Username: "jdoe", Role: "superuser"},
	}
	assert.False(t, tampered.AllowedFor(models.RoleAdmin), "unknown roles grant nothing")
}
