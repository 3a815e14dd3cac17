package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schoolhub/backend/internal/app/models"
	"github.com/schoolhub/backend/internal/app/models/dto"
)

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
	Required   []string
	ValidRoles []string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == status
}

// Client talks to the schoolhub HTTP API. The attached session provides
// the bearer token for authenticated endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

// Login authenticates and stores the returned token and user in the
// session. Persisting the session is the caller's decision.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	req := dto.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp, false); err != nil {
		return nil, err
	}

	c.session.Token = resp.Token
	user := resp.User
	c.session.User = &user

	return &resp, nil
}

// ChangePassword rotates the authenticated user's password. On success the
// cached temporary-password flag is cleared.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	req := dto.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}
	var resp dto.MessageResponse
	if err := c.do(ctx, http.MethodPatch, "/api/auth/change-password", req, &resp, true); err != nil {
		return err
	}

	if c.session.User != nil {
		c.session.User.IsTemporaryPassword = false
	}
	return nil
}

// Me fetches the authenticated user's profile and refreshes the session copy.
func (c *Client) Me(ctx context.Context) (*dto.UserView, error) {
	var view dto.UserView
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &view, true); err != nil {
		return nil, err
	}

	c.session.User = &view
	return &view, nil
}

// ListUsers fetches all users, optionally filtered by role. Admin only.
func (c *Client) ListUsers(ctx context.Context, role *models.Role) ([]dto.UserView, error) {
	path := "/api/auth/users"
	if role != nil {
		path += "?role=" + url.QueryEscape(string(*role))
	}

	var views []dto.UserView
	if err := c.do(ctx, http.MethodGet, path, nil, &views, true); err != nil {
		return nil, err
	}
	return views, nil
}

// CreateUser provisions a new account. Admin only. The response carries
// the plaintext temporary password, returned exactly once.
func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	var resp dto.CreateUserResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/create-user", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser removes the user identified by their public id. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var resp dto.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/auth/users/"+url.PathEscape(id), nil, &resp, true)
}

// do issues a request, attaching the bearer token when authed is set, and
// decodes the JSON response into out. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.session == nil || c.session.Token == "" {
			return &APIError{StatusCode: http.StatusUnauthorized, Message: "No token, authorization denied"}
		}
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp dto.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Message = errResp.Message
			apiErr.Field = errResp.Field
			apiErr.Required = errResp.Required
			apiErr.ValidRoles = errResp.ValidRoles
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
