// package nav models client-side navigation state.
//
// [History] is an in-memory history stack standing in for the browser
// address bar: Replace rewrites the current entry without adding to the
// stack, Navigate pushes a new one. The OAuth callback flow depends on
// Replace to strip consumed query parameters from the visible location.
package nav

import (
	"net/url"
	"sync"
)

// History is a mutable navigation history with a current location.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory creates a history positioned at the initial location.
func NewHistory(initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{entries: []string{initial}}
}

// Location returns the current entry parsed as a URL.
// Unparseable entries resolve to the root path.
func (h *History) Location() *url.URL {
	h.mu.Lock()
	current := h.entries[len(h.entries)-1]
	h.mu.Unlock()

	u, err := url.Parse(current)
	if err != nil {
		return &url.URL{Path: "/"}
	}
	return u
}

// Replace overwrites the current entry without growing the stack.
func (h *History) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = path
}

// Navigate pushes a new entry and makes it current.
func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, path)
}

// Entries returns a copy of the history stack, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
