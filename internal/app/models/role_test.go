package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	for _, invalid := range []string{"", "Admin", "ADMIN", "superuser", "teacher "} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q should be rejected", invalid)
	}
}

func TestRolePrefix(t *testing.T) {
	assert.Equal(t, "ADM", RoleAdmin.Prefix())
	assert.Equal(t, "TEA", RoleTeacher.Prefix())
	assert.Equal(t, "STU", RoleStudent.Prefix())
	assert.Equal(t, "PAR", RoleParent.Prefix())
}

func TestValidRoleNames(t *testing.T) {
	assert.Equal(t, []string{"admin", "teacher", "student", "parent"}, ValidRoleNames())
}
