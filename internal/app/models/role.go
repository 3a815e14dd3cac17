package models

import (
	"fmt"
	"strings"
)

// Role defines the user role type
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// AllRoles lists every valid role, in display order.
var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

// ParseRole validates a raw role string. Anything outside the closed set is
// rejected; there is no fallback role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Prefix returns the 3-letter upper-case user ID prefix for the role,
// e.g. "TEA" for teacher.
func (r Role) Prefix() string {
	return strings.ToUpper(string(r))[:3]
}

// ValidRoleNames returns the allowed role values as plain strings, for error payloads.
func ValidRoleNames() []string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range AllRoles {
		names = append(names, string(r))
	}
	return names
}
