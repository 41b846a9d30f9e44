// package session holds process-wide authentication state.
//
// The [Context] is the single owner of the authenticated/unauthenticated
// flag. Only the OAuth callback success path and logout mutate it; every
// protected surface reads it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chorus-music/chorus/internal/models"
	"golang.org/x/oauth2"
)

// Backend is the slice of the API client the session context depends on.
type Backend interface {
	Me(ctx context.Context) (*models.Account, error)
	Logout(ctx context.Context) error
}

// Context is the process-wide session state consulted by protected views.
type Context struct {
	mu            sync.Mutex
	backend       Backend
	logger        *log.Logger
	authenticated bool
	account       *models.Account
	token         *oauth2.Token
}

// NewContext creates an unauthenticated session context.
func NewContext(backend Backend, logger *log.Logger) *Context {
	return &Context{backend: backend, logger: logger}
}

// Login marks the session authenticated, fetching the account from the
// backend. Login is idempotent: an already-authenticated context returns
// immediately without a network call.
func (c *Context) Login(ctx context.Context) error {
	c.mu.Lock()
	if c.authenticated {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	account, err := c.backend.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	c.mu.Lock()
	c.authenticated = true
	c.account = account
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("session authenticated", "username", account.Username)
	}

	return nil
}

// Logout tears down the backend session and clears local state.
// Local state is cleared even when the backend call fails.
func (c *Context) Logout(ctx context.Context) error {
	err := c.backend.Logout(ctx)

	c.mu.Lock()
	c.authenticated = false
	c.account = nil
	c.token = nil
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Authenticated reports whether the session is authenticated.
func (c *Context) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Account returns the authenticated account, or nil.
func (c *Context) Account() *models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// Token returns the session's credentials, or nil.
func (c *Context) Token() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken stores session credentials without changing the authenticated flag.
func (c *Context) SetToken(token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Restore hydrates the context from a persisted session without a network
// round trip. Expired sessions are ignored.
func (c *Context) Restore(persisted *models.Session) bool {
	if persisted == nil || persisted.Expired() {
		return false
	}

	token := persisted.Token()

	c.mu.Lock()
	c.authenticated = true
	c.token = &token
	c.account = &models.Account{
		Username: persisted.Username(),
		Email:    persisted.Email(),
	}
	c.mu.Unlock()

	return true
}
