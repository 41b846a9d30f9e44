package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/chorus-music/chorus/internal/auth"
	"github.com/chorus-music/chorus/internal/nav"
)

// LoginResult contains the outcome of a browser login flow.
type LoginResult struct {
	err error
}

func (r *LoginResult) Error() error {
	return r.err
}

// LoginRelay receives the identity provider's redirect during a CLI login
// and feeds it to the callback handler. Implements the Handler interface
// for registration with a Router.
//
// The relay serves one redirect per lifetime; later hits are rejected so a
// replayed redirect cannot restart the flow.
type LoginRelay struct {
	callback   *auth.CallbackHandler
	history    *nav.History
	resultChan chan LoginResult
	once       sync.Once
	served     bool
	mu         sync.Mutex
}

// NewLoginRelay creates a relay driving the given callback handler.
// The history must be the same instance the handler navigates, so the relay
// can point it at the incoming redirect URL.
func NewLoginRelay(callback *auth.CallbackHandler, history *nav.History) *LoginRelay {
	return &LoginRelay{
		callback:   callback,
		history:    history,
		resultChan: make(chan LoginResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginRelay) Routes() []string {
	return []string{"/auth/"}
}

// ServeHTTP handles the provider redirect.
//
// The redirect URL becomes the handler's current location, the callback
// flow runs to completion, and the result is sent through the result
// channel.
func (h *LoginRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Requests without callback parameters (health probes, favicons) are
	// not redirects.
	redirect := auth.ParseRedirect(r.URL)
	if redirect.Code == "" && redirect.Err == "" {
		http.NotFound(w, r)
		return
	}

	// Only handle one redirect
	h.mu.Lock()
	if h.served {
		h.mu.Unlock()
		http.Error(w, "Login already processed", http.StatusBadRequest)
		return
	}
	h.served = true
	h.mu.Unlock()

	h.history.Navigate(r.URL.RequestURI())
	err := h.callback.Process(r.Context())
	h.Send(LoginResult{err: err})

	w.Header().Set("Content-Type", "text/html")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, relayPage, "✗ Login Failed", "You can close this window and try again from the terminal.")
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, relayPage, "✓ Login Successful", "You can close this window and return to the terminal.")
}

// Send sends the login result through the channel (only once).
func (h *LoginRelay) Send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *LoginRelay) Result() <-chan LoginResult {
	return h.resultChan
}

const relayPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Chorus</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #7c3aed; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`
