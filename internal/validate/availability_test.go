package validate

import (
	"context"
	"errors"
	"testing"
	"time"

	tu "github.com/chorus-music/chorus/internal/testing"
)

const quiet = 40 * time.Millisecond

func newChecker(client AvailabilityClient) *UsernameChecker {
	return NewUsernameChecker(client, Options{Quiet: quiet})
}

// settle waits out the quiet period and any in-flight check.
func settle(t *testing.T, c *UsernameChecker, field string) State {
	t.Helper()
	time.Sleep(quiet + 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state := c.State(field); !state.Checking {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("check never settled")
	return State{}
}

func TestUsernameChecker(t *testing.T) {
	ctx := context.Background()

	t.Run("checks the value after the quiet period", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "username", "alice")
		state := settle(t, c, "username")

		if state.Outcome != Available {
			t.Errorf("expected available, got %v", state.Outcome)
		}
		if queries := client.Queries(); len(queries) != 1 || queries[0] != "alice" {
			t.Errorf("expected one query for alice, got %v", queries)
		}
	})

	t.Run("coalesces rapid edits into one check of the final value", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		for _, value := range []string{"ali", "alic", "alice"} {
			c.SetValue(ctx, "username", value)
			time.Sleep(5 * time.Millisecond)
		}

		state := settle(t, c, "username")

		if queries := client.Queries(); len(queries) != 1 || queries[0] != "alice" {
			t.Errorf("expected a single query for the final value, got %v", queries)
		}
		if state.Value != "alice" {
			t.Errorf("expected final value alice, got %q", state.Value)
		}
	})

	t.Run("taken usernames resolve taken", func(t *testing.T) {
		client := &tu.CountingChecker{Available: false}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "username", "admin")
		state := settle(t, c, "username")

		if state.Outcome != Taken {
			t.Errorf("expected taken, got %v", state.Outcome)
		}
	})

	t.Run("short values are never checked", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "username", "ab")
		time.Sleep(quiet + 20*time.Millisecond)

		if got := len(client.Queries()); got != 0 {
			t.Errorf("expected no queries for short value, got %d", got)
		}
		if state := c.State("username"); state.Outcome != Unchecked {
			t.Errorf("expected unchecked, got %v", state.Outcome)
		}
	})

	t.Run("baseline value is never checked", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		c.Track("username", "alice")
		c.SetValue(ctx, "username", "alice")
		time.Sleep(quiet + 20*time.Millisecond)

		if got := len(client.Queries()); got != 0 {
			t.Errorf("expected no queries for baseline value, got %d", got)
		}
	})

	t.Run("shrinking below minimum cancels a scheduled check", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "username", "alice")
		c.SetValue(ctx, "username", "al")
		time.Sleep(quiet + 20*time.Millisecond)

		if got := len(client.Queries()); got != 0 {
			t.Errorf("expected scheduled check cancelled, got %d queries", got)
		}
	})

	t.Run("backend failure preserves the prior outcome", func(t *testing.T) {
		client := &tu.CountingChecker{Available: false}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "username", "admin")
		if state := settle(t, c, "username"); state.Outcome != Taken {
			t.Fatalf("expected taken before failure, got %v", state.Outcome)
		}

		client.Err = errors.New("connection refused")
		c.SetValue(ctx, "username", "admin2")
		state := settle(t, c, "username")

		if state.Outcome != Taken {
			t.Errorf("expected prior outcome preserved, got %v", state.Outcome)
		}
		if state.Checking {
			t.Error("expected checking cleared after failed check")
		}
	})

	t.Run("close prevents scheduled checks from firing", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)

		c.SetValue(ctx, "username", "alice")
		c.Close()

		time.Sleep(quiet + 20*time.Millisecond)

		if got := len(client.Queries()); got != 0 {
			t.Errorf("expected no queries after close, got %d", got)
		}
	})

	t.Run("fields are tracked independently", func(t *testing.T) {
		client := &tu.CountingChecker{Available: true}
		c := newChecker(client)
		defer c.Close()

		c.SetValue(ctx, "signup", "alice")
		c.SetValue(ctx, "profile", "bob")

		signup := settle(t, c, "signup")
		profile := settle(t, c, "profile")

		if signup.Value != "alice" || profile.Value != "bob" {
			t.Errorf("expected per-field values, got %q and %q", signup.Value, profile.Value)
		}
		if got := len(client.Queries()); got != 2 {
			t.Errorf("expected one query per field, got %d", got)
		}
	})
}
