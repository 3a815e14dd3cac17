// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/app/services"
	"github.com/schoolhub/backend/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates a user and returns a bearer token.
// Unknown usernames and wrong passwords produce the identical response.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide username and password"))
		return
	}

	if req.Username == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide username and password"))
		return
	}

	user, token, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LoginResponse{
		User:                dto.NewUserView(user),
		Token:               token,
		NeedsPasswordChange: user.IsTemporaryPassword,
	})
}

// ChangePassword rotates the authenticated user's password
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide current and new password"))
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide current and new password"))
		return
	}

	user := middleware.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, dto.NewError("No token, authorization denied"))
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		c.logger.Warn().Err(err).Str("username", user.Username).Msg("Password change failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

// Me returns the client view of the authenticated user
func (c *AuthController) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, dto.NewError("No token, authorization denied"))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewUserView(user))
}
