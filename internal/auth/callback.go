package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/chorus-music/chorus/internal/api"
	"github.com/chorus-music/chorus/internal/shared"
)

// Exchanger exchanges an authorization code for a backend session.
type Exchanger interface {
	ExchangeCode(ctx context.Context, provider, code string) error
}

// Session is the slice of the session context the handler mutates.
type Session interface {
	Login(ctx context.Context) error
}

// Navigator exposes the client-side navigation surface the handler drives:
// reading the current location, rewriting it in place, and navigating away.
type Navigator interface {
	Location() *url.URL
	Replace(path string)
	Navigate(path string)
}

// Notifier is the notification surface for callback progress. Pending
// notifications are identity-tagged so a re-invoked handler replaces its
// indicator instead of stacking a duplicate.
type Notifier interface {
	Pending(id, message string)
	Dismiss(id string)
	Failure(message string)
}

// CallbackHandler processes the redirect back from an identity provider and
// establishes the session exactly once per authorization code.
//
// The handler reads the current location from its Navigator, so invoking
// [CallbackHandler.Process] when no callback is in progress is a no-op.
// Duplicate triggers while an exchange is in flight are dropped by the
// guard, and the code is stripped from the visible location before the
// exchange begins, so neither a re-fired trigger nor a reload can resubmit
// the same code.
type CallbackHandler struct {
	guard     Guard
	exchanger Exchanger
	session   Session
	nav       Navigator
	notify    Notifier
	logger    *log.Logger
	pendingID string
	home      string
}

// NewCallbackHandler creates a handler wired to its collaborators.
// The logger may be nil.
func NewCallbackHandler(exchanger Exchanger, session Session, nav Navigator, notify Notifier, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{
		exchanger: exchanger,
		session:   session,
		nav:       nav,
		notify:    notify,
		logger:    logger,
		pendingID: "auth-callback-" + shared.GenerateID(),
		home:      "/",
	}
}

// Process consumes the current location's callback parameters, if any.
//
// A provider error is surfaced and stripped without an exchange. A code is
// exchanged at most once: concurrent invocations for the same render cycle
// are dropped, and the guard is released on every exit path so the handler
// stays re-armable for a subsequent distinct code. All exchange failures
// are terminal for that code; the user stays on the authentication page and
// must re-initiate login.
func (h *CallbackHandler) Process(ctx context.Context) error {
	loc := h.nav.Location()
	if loc == nil {
		return nil
	}

	redirect := ParseRedirect(loc)

	if redirect.Err != "" {
		h.nav.Replace(Strip(loc))
		h.notify.Failure(fmt.Sprintf("authentication failed: %s", redirect.Err))
		return fmt.Errorf("%w: %s", shared.ErrProviderDeclined, redirect.Err)
	}

	if redirect.Code == "" {
		return nil
	}

	if redirect.Provider == "" {
		h.nav.Replace(Strip(loc))
		h.notify.Failure("authentication failed: unknown provider")
		return fmt.Errorf("%w in %s", shared.ErrUnknownProvider, loc.Path)
	}

	// Duplicate trigger for the same redirect event.
	if !h.guard.TryAcquire() {
		return nil
	}
	defer h.guard.Release()

	// Strip the code before the exchange so a reload cannot resubmit it.
	h.nav.Replace(Strip(loc))

	h.notify.Pending(h.pendingID, "Signing in...")
	defer h.notify.Dismiss(h.pendingID)

	if h.logger != nil {
		h.logger.Debug("exchanging authorization code", "provider", redirect.Provider)
	}

	if err := h.exchanger.ExchangeCode(ctx, redirect.Provider, redirect.Code); err != nil {
		h.notify.Failure(reason(err))
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := h.session.Login(ctx); err != nil {
		h.notify.Failure(reason(err))
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	h.nav.Navigate(h.home)
	return nil
}

// reason extracts the backend's human-readable detail from an exchange
// failure, falling back to a generic message.
func reason(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "authentication failed, please try again"
}
