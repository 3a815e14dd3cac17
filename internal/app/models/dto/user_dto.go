package dto

import (
	"time"

	"github.com/schoolhub/backend/internal/app/models"
)

// UserView is the client-facing representation of a user. Password fields
// are stripped; the public id is the human-facing userId when assigned,
// the internal id otherwise.
type UserView struct {
	ID                  string     `json:"id"`
	UserID              *string    `json:"userId,omitempty"`
	Username            string     `json:"username"`
	Role                string     `json:"role"`
	Email               *string    `json:"email,omitempty"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	IsTemporaryPassword bool       `json:"isTemporaryPassword"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
}

// NewUserView maps a stored user to its client view.
func NewUserView(u *models.User) UserView {
	return UserView{
		ID:                  u.PublicID(),
		UserID:              u.UserID,
		Username:            u.Username,
		Role:                string(u.Role),
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		IsTemporaryPassword: u.IsTemporaryPassword,
		CreatedAt:           u.CreatedAt,
		LastLogin:           u.LastLogin,
	}
}

// NewUserViews maps a list of stored users to client views.
func NewUserViews(users []*models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}
