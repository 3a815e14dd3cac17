package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/app/repositories"
	"github.com/schoolhub/backend/internal/pkg/auth"
)

// contextUserKey is where the resolved identity lives in the Gin context
const contextUserKey = "currentUser"

// AuthMiddleware authenticates requests and enforces role requirements
type AuthMiddleware struct {
	tokens   *auth.TokenService
	userRepo repositories.UserRepository
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens *auth.TokenService, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// Authenticate validates the bearer token and re-resolves the user record
// on every request. There is no caching: a deleted user's outstanding
// tokens stop working on the next call, even though the signature is still
// valid until expiry.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError("No token, authorization denied"))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError("No token, authorization denied"))
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrNoSecret) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewError("Server configuration error"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError("Token is not valid"))
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// Deleted since issuance, or lookup failure: either way the
			// token no longer maps to an identity
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError("Token is not valid"))
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireRole enforces a role on top of Authenticate
func (m *AuthMiddleware) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError("No token, authorization denied"))
			return
		}

		if user.Role != role {
			message := "Access denied."
			if role == models.RoleAdmin {
				message = "Access denied. Admin only."
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewError(message))
			return
		}

		c.Next()
	}
}

// CurrentUser returns the identity resolved by Authenticate, or nil
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
