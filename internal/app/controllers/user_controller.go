package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/app/services"
	"github.com/schoolhub/backend/internal/middleware"
)

// requiredCreateFields lists the mandatory create-user request fields,
// echoed back on validation failures.
var requiredCreateFields = []string{"username", "role", "firstName", "lastName"}

// UserController handles admin-facing user administration
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser provisions a new user with a generated user ID and a
// temporary password. The plaintext password appears in this response only.
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide all required fields").
			WithRequired(requiredCreateFields...))
		return
	}

	if req.Username == "" || req.Role == "" || req.FirstName == "" || req.LastName == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Please provide all required fields").
			WithRequired(requiredCreateFields...))
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewError("Invalid role provided").
			WithValidRoles(models.ValidRoleNames()))
		return
	}

	user, tempPassword, err := c.userService.CreateUser(ctx.Request.Context(), services.NewUserInput{
		Username:  req.Username,
		Role:      role,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("User creation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.CreateUserResponse{
		Message:           "User created successfully",
		User:              dto.NewUserView(user),
		TemporaryPassword: tempPassword,
	})
}

// ListUsers returns all users, newest-created first. An optional ?role=
// query filters the directory by role.
func (c *UserController) ListUsers(ctx *gin.Context) {
	var roleFilter *models.Role
	if raw := ctx.Query("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewError("Invalid role provided").
				WithValidRoles(models.ValidRoleNames()))
			return
		}
		roleFilter = &role
	}

	users, err := c.userService.ListUsers(ctx.Request.Context(), roleFilter)
	if err != nil {
		c.logger.Error().Err(err).Msg("User listing failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewUserViews(users))
}

// DeleteUser removes a user by userId or internal id. Admin records are
// refused regardless of the caller.
func (c *UserController) DeleteUser(ctx *gin.Context) {
	identifier := ctx.Param("id")

	if err := c.userService.DeleteUser(ctx.Request.Context(), identifier); err != nil {
		c.logger.Warn().Err(err).Str("id", identifier).Msg("User deletion failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}
