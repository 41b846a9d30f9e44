// package validate implements debounced asynchronous field validation.
//
// The [UsernameChecker] tracks form fields by identity and checks username
// availability against the backend after a quiet period of no edits. Checks
// for a field are coalesced: a value change while a check is scheduled
// restarts the quiet period from zero, and at most one check per field is
// ever pending.
package validate

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chorus-music/chorus/internal/debounce"
)

// DefaultQuiet is the quiet period before a scheduled check fires.
const DefaultQuiet = 500 * time.Millisecond

// DefaultMinLength matches the backend's minimum username length.
const DefaultMinLength = 3

// Outcome is the resolved availability state of a tracked field.
type Outcome int

const (
	Unchecked Outcome = iota
	Available
	Taken
)

func (o Outcome) String() string {
	switch o {
	case Unchecked:
		return "unchecked"
	case Available:
		return "available"
	case Taken:
		return "taken"
	default:
		return ""
	}
}

// State is a snapshot of a tracked field's validation state.
//
// Checking is true while a backend query is in flight; it is cleared when
// the check settles regardless of outcome.
type State struct {
	Value    string
	Outcome  Outcome
	Checking bool
}

// AvailabilityClient is the slice of the API client the checker depends on.
type AvailabilityClient interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
}

// Options configures a [UsernameChecker].
type Options struct {
	Quiet     time.Duration // quiet period before a check fires (default [DefaultQuiet])
	MinLength int           // minimum value length before a check applies (default [DefaultMinLength])
	Logger    *log.Logger   // development diagnostics; may be nil
}

// UsernameChecker runs debounced availability checks for tracked fields.
type UsernameChecker struct {
	mu        sync.Mutex
	client    AvailabilityClient
	sched     *debounce.Scheduler
	logger    *log.Logger
	quiet     time.Duration
	minLength int
	fields    map[string]*fieldState
}

type fieldState struct {
	baseline    string
	hasBaseline bool
	value       string
	outcome     Outcome
	checking    bool
}

// NewUsernameChecker creates a checker backed by the given client.
func NewUsernameChecker(client AvailabilityClient, opts Options) *UsernameChecker {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}

	return &UsernameChecker{
		client:    client,
		sched:     debounce.NewScheduler(),
		logger:    opts.Logger,
		quiet:     opts.Quiet,
		minLength: opts.MinLength,
		fields:    make(map[string]*fieldState),
	}
}

// Track registers a field with a known-good baseline value. Values equal to
// the baseline are never checked (the user's current username is always
// "available" to them).
func (c *UsernameChecker) Track(field, baseline string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[field] = &fieldState{baseline: baseline, hasBaseline: true}
}

// SetValue records a new value for the field and schedules an availability
// check after the quiet period. An earlier scheduled check for the same
// field is cancelled. Values failing the precondition (too short, or equal
// to the baseline) clear any prior validation state and schedule nothing.
func (c *UsernameChecker) SetValue(ctx context.Context, field, value string) {
	c.mu.Lock()

	fs, ok := c.fields[field]
	if !ok {
		fs = &fieldState{}
		c.fields[field] = fs
	}
	fs.value = value

	if len(value) < c.minLength || (fs.hasBaseline && value == fs.baseline) {
		fs.outcome = Unchecked
		c.mu.Unlock()
		c.sched.Cancel(field)
		return
	}
	c.mu.Unlock()

	c.sched.Schedule(field, c.quiet, func() {
		c.check(ctx, field)
	})
}

// check issues the backend query for the field's current value and settles
// the field's state. Results are keyed by field identity, so a response
// arriving after further edits cannot corrupt another field.
func (c *UsernameChecker) check(ctx context.Context, field string) {
	c.mu.Lock()
	fs, ok := c.fields[field]
	if !ok {
		c.mu.Unlock()
		return
	}
	fs.checking = true
	value := fs.value
	c.mu.Unlock()

	available, err := c.client.CheckUsername(ctx, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	fs.checking = false
	if err != nil {
		// Transient failures keep the prior outcome rather than flashing a
		// false "available" state.
		if c.logger != nil {
			c.logger.Debug("username availability check failed", "field", field, "error", err)
		}
		return
	}

	if available {
		fs.outcome = Available
	} else {
		fs.outcome = Taken
	}
}

// State returns a snapshot of the field's validation state.
func (c *UsernameChecker) State(field string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs, ok := c.fields[field]
	if !ok {
		return State{}
	}
	return State{Value: fs.value, Outcome: fs.outcome, Checking: fs.checking}
}

// Close cancels all pending checks. No backend call fires after Close
// returns; checks already in flight settle normally.
func (c *UsernameChecker) Close() {
	c.sched.Stop()
}
