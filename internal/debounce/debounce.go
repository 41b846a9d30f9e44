// package debounce provides a cancellable scheduled-task primitive.
//
// A [Scheduler] holds at most one pending task per key. Scheduling a task
// for a key that already has one pending replaces it, restarting the delay
// from zero. Cancellation is the only way to stop a scheduled task before
// it fires; [Scheduler.Stop] cancels everything on owner teardown.
package debounce

import (
	"sync"
	"time"
)

// Scheduler schedules delayed tasks keyed by string, with at most one
// pending task per key.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after delay, replacing any pending task for the same key.
// The superseded task never fires. Scheduling on a stopped scheduler is a
// no-op.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A replaced or cancelled timer may still fire if it was already
		// running; only the current registration proceeds.
		current := s.timers[key] == timer && !s.stopped
		if current {
			delete(s.timers, key)
		}
		s.mu.Unlock()

		if current {
			fn()
		}
	})
	s.timers[key] = timer
}

// Cancel stops the pending task for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Pending reports whether a task is scheduled for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Stop cancels all pending tasks and rejects further scheduling.
// Used on owner teardown so no task fires against a disposed view.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
