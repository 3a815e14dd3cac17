package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful authentication
type LoginResponse struct {
	User                UserView `json:"user"`
	Token               string   `json:"token"`
	NeedsPasswordChange bool     `json:"needsPasswordChange"`
}

// ChangePasswordRequest represents a password rotation request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CreateUserRequest represents an admin-issued user creation request
type CreateUserRequest struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CreateUserResponse returns the created user plus the plaintext temporary
// password, relayed exactly once.
type CreateUserResponse struct {
	Message           string   `json:"message"`
	User              UserView `json:"user"`
	TemporaryPassword string   `json:"temporaryPassword"`
}

// MessageResponse carries a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}
