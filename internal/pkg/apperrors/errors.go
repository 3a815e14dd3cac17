// Package apperrors defines the sentinel errors shared between the service
// layer and the HTTP error translation.
package apperrors

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
)

// Authorization errors
var (
	ErrAdminProtected = errors.New("admin user cannot be deleted")
)

// User errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserIDTaken   = errors.New("user ID already exists")
)
