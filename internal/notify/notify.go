// package notify implements the user-facing notification surface.
//
// Notifications are identity-tagged: issuing a pending notification with an
// identity that is already live replaces it instead of stacking a duplicate,
// and the issuer can later dismiss it by the same identity.
package notify

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Kind classifies a notification.
type Kind int

const (
	Pending Kind = iota
	Success
	Failure
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return ""
	}
}

// Notification is a single entry in the center.
type Notification struct {
	ID      string
	Kind    Kind
	Message string
}

// Center is an in-memory notification surface, optionally mirrored to a
// structured logger. It records terminal notifications in order and tracks
// live (dismissible) pending notifications by identity.
type Center struct {
	mu      sync.Mutex
	logger  *log.Logger
	pending map[string]Notification
	history []Notification
}

// NewCenter creates a notification center. The logger may be nil.
func NewCenter(logger *log.Logger) *Center {
	return &Center{
		logger:  logger,
		pending: make(map[string]Notification),
	}
}

// Pending issues a dismissible pending notification tagged with id.
// Re-issuing with the same id replaces the live entry, never stacks.
func (c *Center) Pending(id, message string) {
	c.mu.Lock()
	c.pending[id] = Notification{ID: id, Kind: Pending, Message: message}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info(message)
	}
}

// Dismiss removes the live pending notification with the given id, if any.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Success records a terminal success notification.
func (c *Center) Success(message string) {
	c.mu.Lock()
	c.history = append(c.history, Notification{Kind: Success, Message: message})
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info(message)
	}
}

// Failure records a terminal failure notification.
func (c *Center) Failure(message string) {
	c.mu.Lock()
	c.history = append(c.history, Notification{Kind: Failure, Message: message})
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Error(message)
	}
}

// Live returns the currently live pending notifications.
func (c *Center) Live() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.pending))
	for _, n := range c.pending {
		out = append(out, n)
	}
	return out
}

// History returns all terminal notifications in the order they were recorded.
func (c *Center) History() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.history))
	copy(out, c.history)
	return out
}
