package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

type userJSON struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	EmailConfirmedAt *time.Time        `json:"email_confirmed_at"`
	UserMetadata     core.UserMetadata `json:"user_metadata"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (u userJSON) toCore() *core.User {
	return &core.User{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		Metadata:       u.UserMetadata,
		CreatedAt:      u.CreatedAt,
	}
}

type sessionJSON struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	User         *userJSON `json:"user"`
}

// CreateUser creates a user through the admin API
func (c *Client) CreateUser(ctx context.Context, user core.NewUser) (*core.User, error) {
	req := map[string]any{
		"email":         user.Email,
		"password":      user.Password,
		"email_confirm": user.EmailConfirm,
		"user_metadata": user.Metadata,
	}

	var out userJSON
	if _, err := c.do(ctx, "create user", http.MethodPost, "/auth/v1/admin/users", nil, req, &out); err != nil {
		if isStatus(err, http.StatusUnprocessableEntity) && isEmailTaken(err) {
			return nil, core.ErrUserExists
		}
		return nil, err
	}
	return out.toCore(), nil
}

// UpdateUserPassword replaces a user's password through the admin API
func (c *Client) UpdateUserPassword(ctx context.Context, userID, password string) error {
	path := "/auth/v1/admin/users/" + url.PathEscape(userID)
	if _, err := c.do(ctx, "update user", http.MethodPut, path, nil, map[string]string{"password": password}, nil); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return core.ErrNotFound
		}
		return err
	}
	return nil
}

// SignInWithPassword exchanges credentials for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*core.Session, error) {
	req := map[string]string{"email": email, "password": password}

	var out sessionJSON
	if _, err := c.do(ctx, "sign in", http.MethodPost, "/auth/v1/token?grant_type=password", nil, req, &out); err != nil {
		if isStatus(err, http.StatusBadRequest) {
			return nil, core.ErrBadCredentials
		}
		return nil, err
	}

	session := &core.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
		ExpiresAt:    out.ExpiresAt,
	}
	if out.User != nil {
		session.User = out.User.toCore()
	}
	return session, nil
}

func isEmailTaken(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == "email_exists" || strings.Contains(strings.ToLower(apiErr.Message), "already been registered")
}

var _ ports.AuthAdmin = (*Client)(nil)
