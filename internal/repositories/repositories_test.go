package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/chorus-music/chorus/internal/models"
	"github.com/chorus-music/chorus/internal/shared"
	"golang.org/x/oauth2"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testSession(provider, username string) *models.Session {
	return models.NewSession(0, provider, username, username+"@example.com", oauth2.Token{
		AccessToken:  "at-" + username,
		RefreshToken: "rt-" + username,
		TokenType:    "bearer",
		Expiry:       time.Now().Add(time.Hour),
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("assigns id and sequence", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			session := testSession("google", "alice")
			if err := repo.Create(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if session.ID() == "" {
				t.Error("expected generated ID")
			}
			if session.Sequence() == 0 {
				t.Error("expected assigned sequence")
			}
		})

		t.Run("sequences increase monotonically", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			first := testSession("google", "alice")
			second := testSession("spotify", "bob")

			if err := repo.Create(first); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := repo.Create(second); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if second.Sequence() <= first.Sequence() {
				t.Errorf("expected increasing sequence, got %d then %d", first.Sequence(), second.Sequence())
			}
		})

		t.Run("rejects invalid sessions", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			invalid := models.NewSession(0, "", "alice", "", oauth2.Token{AccessToken: "at"})
			if err := repo.Create(invalid); err == nil {
				t.Fatal("expected validation error for missing provider")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("round-trips a session", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			session := testSession("google", "alice")
			if err := repo.Create(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got, err := repo.Get(session.ID())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got.Provider() != "google" || got.Username() != "alice" {
				t.Errorf("expected stored identity, got %s/%s", got.Provider(), got.Username())
			}
			if got.Token().AccessToken != "at-alice" {
				t.Errorf("expected stored token, got %q", got.Token().AccessToken)
			}
			if got.Token().Expiry.IsZero() {
				t.Error("expected expiry to survive the round trip")
			}
		})

		t.Run("missing session returns ErrSessionNotFound", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Current", func(t *testing.T) {
		t.Run("returns the most recent live session", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			if err := repo.Create(testSession("google", "alice")); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := repo.Create(testSession("spotify", "bob")); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got, err := repo.Current()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Username() != "bob" {
				t.Errorf("expected latest session, got %q", got.Username())
			}
		})

		t.Run("empty table returns ErrSessionNotFound", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			if _, err := repo.Current(); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("persists changed fields", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			session := testSession("google", "alice")
			if err := repo.Create(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			token := session.Token()
			token.AccessToken = "rotated"
			session.SetToken(token)

			if err := repo.Update(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got, err := repo.Get(session.ID())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Token().AccessToken != "rotated" {
				t.Errorf("expected rotated token, got %q", got.Token().AccessToken)
			}
		})

		t.Run("missing session returns ErrSessionNotFound", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			ghost := testSession("google", "alice")
			ghost.SetID("missing")

			if err := repo.Update(ghost); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("soft-deletes a session", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			session := testSession("google", "alice")
			if err := repo.Create(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := repo.Delete(session.ID()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if _, err := repo.Get(session.ID()); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected deleted session to be invisible, got %v", err)
			}
		})

		t.Run("double delete returns ErrSessionNotFound", func(t *testing.T) {
			repo := NewSessionRepository(testDB(t))

			session := testSession("google", "alice")
			if err := repo.Create(session); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := repo.Delete(session.ID()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if err := repo.Delete(session.ID()); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("DeleteAll", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		if err := repo.Create(testSession("google", "alice")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.Create(testSession("spotify", "bob")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := repo.DeleteAll(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := repo.Current(); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected no live sessions, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		if err := repo.Create(testSession("google", "alice")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.Create(testSession("spotify", "alice")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.Create(testSession("google", "bob")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		t.Run("filters by provider", func(t *testing.T) {
			sessions, err := repo.List(map[string]any{"provider": "google"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(sessions) != 2 {
				t.Errorf("expected two google sessions, got %d", len(sessions))
			}
		})

		t.Run("filters by username", func(t *testing.T) {
			sessions, err := repo.List(map[string]any{"username": "alice"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(sessions) != 2 {
				t.Errorf("expected two sessions for alice, got %d", len(sessions))
			}
		})

		t.Run("no criteria lists everything in order", func(t *testing.T) {
			sessions, err := repo.List(nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(sessions) != 3 {
				t.Fatalf("expected three sessions, got %d", len(sessions))
			}
			for i := 1; i < len(sessions); i++ {
				if sessions[i].Sequence() <= sessions[i-1].Sequence() {
					t.Error("expected sessions ordered by sequence")
				}
			}
		})
	})
}
