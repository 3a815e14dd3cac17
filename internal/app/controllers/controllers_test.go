package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/backend/internal/app/controllers"
	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
	"github.com/schoolhub/backend/internal/app/repositories/inmem"
	"github.com/schoolhub/backend/internal/app/routes"
	"github.com/schoolhub/backend/internal/app/services"
	"github.com/schoolhub/backend/internal/middleware"
	"github.com/schoolhub/backend/internal/pkg/auth"
)

// harness wires the real router, middleware, services, and controllers over
// the in-memory repository.
type harness struct {
	router *gin.Engine
	repo   *inmem.UserRepository
}

func newHarness(t *testing.T, secret string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := inmem.NewUserRepository()
	tokens := auth.NewTokenService(auth.TokenConfig{
		SecretKey: secret,
		Expiry:    time.Hour,
		Issuer:    "schoolhub-test",
	})

	authService := services.NewAuthService(repo, tokens, zerolog.Nop())
	userService := services.NewUserService(repo, zerolog.Nop())
	authMiddleware := middleware.NewAuthMiddleware(tokens, repo)

	router := gin.New()
	routes.SetupRouter(router,
		controllers.NewAuthController(authService, zerolog.Nop()),
		controllers.NewUserController(userService, zerolog.Nop()),
		authMiddleware,
	)

	return &harness{router: router, repo: repo}
}

func (h *harness) seed(t *testing.T, username, password string, role models.Role, temporary bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	userID := fmt.Sprintf("%s%04d", role.Prefix(), 1000+len(username))
	user := &models.User{
		UserID:              &userID,
		Username:            username,
		Password:            hash,
		Role:                role,
		FirstName:           "Test",
		LastName:            "User",
		IsTemporaryPassword: temporary,
	}
	require.NoError(t, h.repo.Create(context.Background(), user))
	return user
}

func (h *harness) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, username, password string) dto.LoginResponse {
	t.Helper()

	rec := h.request(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login response: %s", rec.Body.String())

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "correct-pass", models.RoleTeacher, true)

	resp := h.login(t, "jdoe", "correct-pass")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jdoe", resp.User.Username)
	assert.Equal(t, "teacher", resp.User.Role)
	assert.True(t, resp.NeedsPasswordChange)
}

func TestLoginMissingFields(t *testing.T) {
	h := newHarness(t, "test-secret")

	for _, body := range []any{
		nil,
		dto.LoginRequest{Username: "jdoe"},
		dto.LoginRequest{Password: "pass"},
	} {
		rec := h.request(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please provide username and password", decodeError(t, rec).Message)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "correct-pass", models.RoleTeacher, false)

	for _, req := range []dto.LoginRequest{
		{Username: "jdoe", Password: "wrong-pass"},
		{Username: "nobody", Password: "whatever"},
	} {
		rec := h.request(t, http.MethodPost, "/api/auth/login", "", req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, rec).Message)
	}
}

func TestLoginWithoutConfiguredSecret(t *testing.T) {
	h := newHarness(t, "")
	h.seed(t, "jdoe", "correct-pass", models.RoleTeacher, false)

	rec := h.request(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Username: "jdoe", Password: "correct-pass",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server configuration error", decodeError(t, rec).Message)
}

func TestAuthenticatedRouteWithoutToken(t *testing.T) {
	h := newHarness(t, "test-secret")

	rec := h.request(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token, authorization denied", decodeError(t, rec).Message)
}

func TestAuthenticatedRouteWithBadToken(t *testing.T) {
	h := newHarness(t, "test-secret")

	rec := h.request(t, http.MethodGet, "/api/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decodeError(t, rec).Message)
}

func TestMe(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "correct-pass", models.RoleStudent, false)
	resp := h.login(t, "jdoe", "correct-pass")

	rec := h.request(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view dto.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "jdoe", view.Username)
	assert.Equal(t, "student", view.Role)
}

func TestChangePasswordEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "temp-pass", models.RoleStudent, true)
	resp := h.login(t, "jdoe", "temp-pass")

	rec := h.request(t, http.MethodPatch, "/api/auth/change-password", resp.Token, dto.ChangePasswordRequest{
		CurrentPassword: "temp-pass",
		NewPassword:     "my-own-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var msg dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "Password changed successfully", msg.Message)

	// The new password works and the temporary flag is cleared
	next := h.login(t, "jdoe", "my-own-pass")
	assert.False(t, next.NeedsPasswordChange)

	rec = h.request(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Username: "jdoe", Password: "temp-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "temp-pass", models.RoleStudent, true)
	resp := h.login(t, "jdoe", "temp-pass")

	rec := h.request(t, http.MethodPatch, "/api/auth/change-password", resp.Token, dto.ChangePasswordRequest{
		CurrentPassword: "not-it",
		NewPassword:     "my-own-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Current password is incorrect", decodeError(t, rec).Message)
}

func TestChangePasswordMissingFields(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "temp-pass", models.RoleStudent, true)
	resp := h.login(t, "jdoe", "temp-pass")

	rec := h.request(t, http.MethodPatch, "/api/auth/change-password", resp.Token, dto.ChangePasswordRequest{
		CurrentPassword: "temp-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide current and new password", decodeError(t, rec).Message)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "jdoe", "correct-pass", models.RoleTeacher, false)
	resp := h.login(t, "jdoe", "correct-pass")

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/users"},
		{http.MethodPost, "/api/auth/create-user"},
		{http.MethodDelete, "/api/auth/users/STU1004"},
	} {
		rec := h.request(t, route.method, route.path, resp.Token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Access denied. Admin only.", decodeError(t, rec).Message)
	}
}

func TestCreateUserEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	admin := h.login(t, "root", "admin-pass")

	rec := h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, dto.CreateUserRequest{
		Username:  "msmith",
		Role:      "teacher",
		Email:     "m.smith@school.edu",
		FirstName: "Mary",
		LastName:  "Smith",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.CreateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User created successfully", resp.Message)
	assert.Regexp(t, `^TEA[1-9]\d{3}$`, resp.User.ID)
	assert.Regexp(t, `^[A-Za-z0-9]{8}$`, resp.TemporaryPassword)

	// The new account can log in with the relayed temporary password
	created := h.login(t, "msmith", resp.TemporaryPassword)
	assert.True(t, created.NeedsPasswordChange)
}

func TestCreateUserValidation(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	admin := h.login(t, "root", "admin-pass")

	t.Run("missing fields", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, dto.CreateUserRequest{
			Username: "msmith",
			Role:     "teacher",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errResp := decodeError(t, rec)
		assert.Equal(t, "Please provide all required fields", errResp.Message)
		assert.Equal(t, []string{"username", "role", "firstName", "lastName"}, errResp.Required)
	})

	t.Run("invalid role", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, dto.CreateUserRequest{
			Username:  "msmith",
			Role:      "principal",
			FirstName: "Mary",
			LastName:  "Smith",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errResp := decodeError(t, rec)
		assert.Equal(t, "Invalid role provided", errResp.Message)
		assert.Equal(t, []string{"admin", "teacher", "student", "parent"}, errResp.ValidRoles)
	})

	t.Run("duplicate username", func(t *testing.T) {
		req := dto.CreateUserRequest{
			Username: "dupe", Role: "student", FirstName: "First", LastName: "Dupe",
		}
		rec := h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
		errResp := decodeError(t, rec)
		assert.Equal(t, "Username already exists", errResp.Message)
		assert.Equal(t, "username", errResp.Field)
	})
}

func TestListUsersEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	admin := h.login(t, "root", "admin-pass")

	for _, req := range []dto.CreateUserRequest{
		{Username: "t1", Role: "teacher", FirstName: "T", LastName: "One"},
		{Username: "s1", Role: "student", FirstName: "S", LastName: "One"},
	} {
		rec := h.request(t, http.MethodPost, "/api/auth/create-user", admin.Token, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := h.request(t, http.MethodGet, "/api/auth/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []dto.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "s1", views[0].Username, "newest account first")

	rec = h.request(t, http.MethodGet, "/api/auth/users?role=teacher", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "t1", views[0].Username)

	rec = h.request(t, http.MethodGet, "/api/auth/users?role=janitor", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid role provided", decodeError(t, rec).Message)
}

func TestDeleteUserEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	target := h.seed(t, "jdoe", "their-pass", models.RoleStudent, false)
	admin := h.login(t, "root", "admin-pass")
	victim := h.login(t, "jdoe", "their-pass")

	rec := h.request(t, http.MethodDelete, "/api/auth/users/"+*target.UserID, admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "User deleted successfully", msg.Message)

	// The deleted user's still-unexpired token stops working immediately
	rec = h.request(t, http.MethodGet, "/api/auth/me", victim.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decodeError(t, rec).Message)
}

func TestDeleteAdminRefused(t *testing.T) {
	h := newHarness(t, "test-secret")
	root := h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	admin := h.login(t, "root", "admin-pass")

	rec := h.request(t, http.MethodDelete, "/api/auth/users/"+*root.UserID, admin.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Cannot delete admin user", decodeError(t, rec).Message)
}

func TestDeleteUserNotFound(t *testing.T) {
	h := newHarness(t, "test-secret")
	h.seed(t, "root", "admin-pass", models.RoleAdmin, false)
	admin := h.login(t, "root", "admin-pass")

	rec := h.request(t, http.MethodDelete, "/api/auth/users/STU9999", admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeError(t, rec).Message)
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness(t, "test-secret")

	rec := h.request(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
