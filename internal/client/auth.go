// ABOUTME: Authentication and profile calls for the SafePulse API client
// ABOUTME: Login, registration and logout write through to the session store

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/markalston/safepulse-cli/internal/session"
)

// Login authenticates an officer and stores the returned session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login/", nil, creds, &out); err != nil {
		return nil, err
	}
	if err := c.store.SetAuth(out.Officer, out.Tokens); err != nil {
		return nil, err
	}
	c.logger.Info("Officer logged in", "badge_number", out.Officer.BadgeNumber)
	return &out, nil
}

// Register creates an officer account and stores the returned session.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register/", nil, reg, &out); err != nil {
		return nil, err
	}
	if err := c.store.SetAuth(out.Officer, out.Tokens); err != nil {
		return nil, err
	}
	c.logger.Info("Officer registered", "badge_number", out.Officer.BadgeNumber)
	return &out, nil
}

// Logout revokes the refresh token on the backend and clears the local
// session. The local session is cleared even when the backend call fails;
// that failure is still returned.
func (c *Client) Logout(ctx context.Context) error {
	var serverErr error
	if refresh := c.store.RefreshToken(); refresh != "" {
		serverErr = c.doJSON(ctx, http.MethodPost, "/api/auth/logout/", nil, refreshRequest{Refresh: refresh}, nil)
		if serverErr != nil {
			c.logger.Warn("Backend logout failed", "error", serverErr)
		}
	}
	if err := c.store.Logout(); err != nil {
		return err
	}
	if serverErr != nil {
		return fmt.Errorf("logged out locally: %w", serverErr)
	}
	return nil
}

// Profile fetches the current officer and refreshes the stored copy.
func (c *Client) Profile(ctx context.Context) (*session.Officer, error) {
	var officer session.Officer
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile/", nil, nil, &officer); err != nil {
		return nil, err
	}
	if err := c.store.UpdateOfficer(officer); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
		return nil, err
	}
	return &officer, nil
}

// UpdateProfile edits the current officer's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*session.Officer, error) {
	var out struct {
		Message string          `json:"message"`
		Officer session.Officer `json:"officer"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/profile/", nil, update, &out); err != nil {
		return nil, err
	}
	if err := c.store.UpdateOfficer(out.Officer); err != nil {
		return nil, err
	}
	return &out.Officer, nil
}

// ChangePassword changes the current officer's password.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/change-password/", nil, change, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Officers lists registered officers.
func (c *Client) Officers(ctx context.Context) (*Page[session.Officer], error) {
	var out Page[session.Officer]
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/officers/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
