package models

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Session represents a login session persisted between CLI invocations.
//
// A session records which identity provider authenticated the user (or
// "password" for credential logins) along with the token material needed
// to resume the session without a fresh login.
type Session struct {
	id        string
	sequence  int
	provider  string
	username  string
	email     string
	token     oauth2.Token
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates a session for the given provider and account identity.
func NewSession(sequence int, provider, username, email string, token oauth2.Token) *Session {
	now := time.Now()
	return &Session{
		sequence:  sequence,
		provider:  provider,
		username:  username,
		email:     email,
		token:     token,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Sequence() int { return s.sequence }

func (s *Session) Provider() string { return s.provider }

func (s *Session) Username() string { return s.username }

func (s *Session) Email() string { return s.email }

func (s *Session) Token() oauth2.Token { return s.token }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

// SetSequence is used by the repository when assigning or rehydrating rows.
func (s *Session) SetSequence(n int) { s.sequence = n }

func (s *Session) SetID(id string) { s.id = id }

func (s *Session) SetUpdatedAt(t time.Time) { s.updatedAt = t }

func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }

func (s *Session) SetToken(token oauth2.Token) { s.token = token }

func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }

// Expired reports whether the session's access token has an expiry in the past.
// Sessions without an expiry never report expired.
func (s *Session) Expired() bool {
	if s.token.Expiry.IsZero() {
		return false
	}
	return time.Now().After(s.token.Expiry)
}

// Validate checks if the session's data is valid.
func (s *Session) Validate() error {
	if s.provider == "" {
		return fmt.Errorf("session provider is required")
	}
	if s.username == "" {
		return fmt.Errorf("session username is required")
	}
	if s.token.AccessToken == "" {
		return fmt.Errorf("session access token is required")
	}
	return nil
}
