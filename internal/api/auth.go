package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chorus-music/chorus/internal/models"
)

// SuccessSentinel is the exact message the backend returns on a successful
// authorization-code exchange. Any other body is treated as failure.
const SuccessSentinel = "Authentication successful"

// ProviderURL fetches the identity provider's login URL for the given provider.
func (c *Client) ProviderURL(ctx context.Context, provider string) (string, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/api/auth/%s", url.PathEscape(provider)))
	if err != nil {
		return "", err
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := decode(resp, &body); err != nil {
		return "", err
	}
	if body.URL == "" {
		return "", fmt.Errorf("no login URL in response")
	}

	return body.URL, nil
}

// ExchangeCode exchanges an authorization code for a session via the backend.
//
// The exchange succeeds only when the backend responds 2xx with the exact
// [SuccessSentinel] message; any other shape is returned as an [*Error].
func (c *Client) ExchangeCode(ctx context.Context, provider, code string) error {
	path := fmt.Sprintf("/api/auth/%s/callback?code=%s", url.PathEscape(provider), url.QueryEscape(code))

	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := decode(resp, &body); err != nil {
		return err
	}
	if body.Message != SuccessSentinel {
		return &Error{Status: resp.StatusCode, Detail: "unexpected response from authentication server"}
	}

	return nil
}

// CheckUsername reports whether the given username is available for registration.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/api/auth/check-username/%s", url.PathEscape(username)))
	if err != nil {
		return false, err
	}

	var body struct {
		Available bool `json:"available"`
	}
	if err := decode(resp, &body); err != nil {
		return false, err
	}

	return body.Available, nil
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*models.Account, error) {
	resp, err := c.Get(ctx, "/api/auth/me")
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := decode(resp, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// PasswordLogin authenticates with a username (or email) and password.
func (c *Client) PasswordLogin(ctx context.Context, username, password string) (*models.Credentials, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.PostForm(ctx, "/api/auth/login", form)
	if err != nil {
		return nil, err
	}

	var creds models.Credentials
	if err := decode(resp, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Logout tears down the backend session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Post(ctx, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

// Refresh exchanges the refresh token for fresh credentials.
func (c *Client) Refresh(ctx context.Context) (*models.Credentials, error) {
	resp, err := c.Post(ctx, "/api/auth/refresh", nil)
	if err != nil {
		return nil, err
	}

	var creds models.Credentials
	if err := decode(resp, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}
