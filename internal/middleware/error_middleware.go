package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/pkg/apperrors"
	"github.com/schoolhub/backend/internal/pkg/auth"
	"github.com/schoolhub/backend/internal/pkg/logger"
)

// HandleAPIError translates service errors into HTTP responses. Unexpected
// errors are reduced to a generic message; full detail stays in the logs.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(401, dto.NewError("Invalid credentials"))
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		c.JSON(401, dto.NewError("Current password is incorrect"))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(404, dto.NewError("User not found"))
	case errors.Is(err, apperrors.ErrAdminProtected):
		c.JSON(403, dto.NewError("Cannot delete admin user"))
	case errors.Is(err, apperrors.ErrUsernameTaken):
		c.JSON(409, dto.NewError("Username already exists").WithField("username"))
	case errors.Is(err, apperrors.ErrUserIDTaken):
		c.JSON(409, dto.NewError("User ID already exists").WithField("userId"))
	case errors.Is(err, auth.ErrNoSecret):
		c.JSON(500, dto.NewError("Server configuration error"))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		c.JSON(500, dto.NewError("Server error"))
	}
}
