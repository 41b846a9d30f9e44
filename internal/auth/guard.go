package auth

import "sync"

// Guard is a single-slot reentrancy lock with acquire-or-abort semantics.
//
// It substitutes for a mutex in flows where a duplicate trigger must be
// dropped rather than queued: the second caller aborts instead of waiting
// for the first to finish.
type Guard struct {
	mu   sync.Mutex
	held bool
}

// TryAcquire takes the slot if it is free and reports whether it did.
// A false return means another invocation of the guarded flow is in flight
// and the caller must do nothing.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return false
	}
	g.held = true
	return true
}

// Release frees the slot. Callers release on every exit path, typically via
// defer, so a failed flow cannot wedge the guard.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// Held reports whether the slot is currently taken.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
