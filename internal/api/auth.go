package api

import (
	"context"
	"encoding/json"
	"net/http"

	"primis/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthToken, error) {
	var out domain.AuthToken
	err := c.Do(ctx, http.MethodPost, Prefix+"/auth/login", creds, nil, &out)
	return out, err
}

// Register creates a student account. It never signs the caller in.
func (c *Client) Register(ctx context.Context, data domain.RegisterData) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/auth/register/student", data, nil)
}

// RegisterRole creates an account of the given role. The backend only
// accepts teacher, admin and parent registrations from an administrator.
func (c *Client) RegisterRole(ctx context.Context, role domain.UserType, data any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/auth/register/"+role.String(), data, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (domain.CurrentUser, error) {
	var out domain.CurrentUser
	err := c.Do(ctx, http.MethodGet, Prefix+"/auth/me", nil, nil, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodPost, Prefix+"/auth/logout", nil, nil)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/auth/forgot-password", domain.ForgotPassword{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, in domain.ResetPassword) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/auth/reset-password", in, nil)
}

func (c *Client) ChangePassword(ctx context.Context, in domain.ChangePassword) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/auth/change-password", in, nil)
}

var _ domain.AuthAPI = (*Client)(nil)
