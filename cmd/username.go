package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chorus-music/chorus/internal/shared"
	"github.com/chorus-music/chorus/internal/validate"
	"github.com/urfave/cli/v3"
)

// UsernameCheck checks username availability against the backend.
//
// In direct mode a single name is checked immediately. With --watch, names
// are read from stdin as the user types candidates; each keystroke-like
// update restarts the quiet period, so only the value the user settles on
// reaches the backend.
func (r *Runner) UsernameCheck(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	watch := cmd.Bool("watch")
	current := cmd.String("current")
	useJSON := cmd.Bool("json")

	if watch {
		return r.watchUsernames(ctx, current)
	}

	if name == "" {
		return fmt.Errorf("%w: username argument is required", shared.ErrMissingArgument)
	}
	if len(name) < r.config.Validation.MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", shared.ErrInvalidInput, r.config.Validation.MinUsernameLength)
	}

	available, err := r.api.CheckUsername(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(map[string]any{"username": name, "available": available}, false)
	}

	if available {
		r.writePlain("✓ %s is available\n", name)
		return nil
	}

	r.writePlain("✗ %s is taken\n", name)
	return fmt.Errorf("%w: %s", shared.ErrUsernameTaken, name)
}

// watchUsernames feeds stdin lines into a debounced checker and reports the
// settled outcome of each.
func (r *Runner) watchUsernames(ctx context.Context, current string) error {
	quiet := time.Duration(r.config.Validation.QuietMS) * time.Millisecond

	checker := validate.NewUsernameChecker(r.api, validate.Options{
		Quiet:     quiet,
		MinLength: r.config.Validation.MinUsernameLength,
		Logger:    r.logger,
	})
	defer checker.Close()

	const field = "username"
	if current != "" {
		checker.Track(field, current)
	}

	r.writePlain("Type usernames to check (Ctrl-D to quit):\n")

	scanner := bufio.NewScanner(r.input)
	for scanner.Scan() {
		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			continue
		}

		checker.SetValue(ctx, field, value)
		state := settle(checker, field, quiet)

		switch {
		case state.Outcome == validate.Available:
			r.writePlain("✓ %s is available\n", state.Value)
		case state.Outcome == validate.Taken:
			r.writePlain("✗ %s is taken\n", state.Value)
		case current != "" && value == current:
			r.writePlain("– %s is your current username\n", value)
		default:
			r.writePlain("– %s not checked (too short?)\n", value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

// settle waits out the quiet period plus any in-flight check, then snapshots
// the field's state.
func settle(checker *validate.UsernameChecker, field string, quiet time.Duration) validate.State {
	time.Sleep(quiet + 50*time.Millisecond)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		state := checker.State(field)
		if !state.Checking {
			return state
		}
		time.Sleep(25 * time.Millisecond)
	}

	return checker.State(field)
}
