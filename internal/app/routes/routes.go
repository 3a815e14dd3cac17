package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/app/controllers"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// Every route below re-verifies the token and re-resolves the user
	authenticated := auth.Group("")
	authenticated.Use(authMiddleware.Authenticate())
	{
		authenticated.PATCH("/change-password", authController.ChangePassword)
		authenticated.GET("/me", authController.Me)

		adminOnly := authenticated.Group("")
		adminOnly.Use(authMiddleware.RequireRole(models.RoleAdmin))
		{
			adminOnly.POST("/create-user", userController.CreateUser)
			adminOnly.GET("/users", userController.ListUsers)
			adminOnly.DELETE("/users/:id", userController.DeleteUser)
		}
	}

	// Health check endpoint (public)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
