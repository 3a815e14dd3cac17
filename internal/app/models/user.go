package models

import (
	"strconv"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                  int64      `json:"id" db:"id"`                                     // System-generated internal identifier
	UserID              *string    `json:"userId,omitempty" db:"user_id"`                  // Human-facing identifier (e.g. "TEA1234"), unique when present
	Username            string     `json:"username" db:"username"`                         // Login handle, unique, case-sensitive
	Password            string     `json:"-" db:"password"`                                // bcrypt hash (excluded from JSON)
	Role                Role       `json:"role" db:"role"`                                 // One of admin, teacher, student, parent
	Email               *string    `json:"email,omitempty" db:"email"`                     // Optional, stored lowercase
	FirstName           string     `json:"firstName" db:"first_name"`                      // User's first name
	LastName            string     `json:"lastName" db:"last_name"`                        // User's last name
	IsTemporaryPassword bool       `json:"isTemporaryPassword" db:"is_temporary_password"` // Forces a password change before full access
	LastLogin           *time.Time `json:"lastLogin,omitempty" db:"last_login"`            // Timestamp of the last successful login (nullable)
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`                      // Timestamp when the user was created
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`                      // Timestamp when the user was last updated
}

// PublicID returns the identifier exposed to clients: the human-facing
// userId when assigned, the internal ID otherwise.
func (u *User) PublicID() string {
	if u.UserID != nil && *u.UserID != "" {
		return *u.UserID
	}
	return strconv.FormatInt(u.ID, 10)
}
