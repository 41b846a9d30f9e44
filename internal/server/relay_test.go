package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chorus-music/chorus/internal/auth"
	"github.com/chorus-music/chorus/internal/nav"
	"github.com/chorus-music/chorus/internal/notify"
	tu "github.com/chorus-music/chorus/internal/testing"
)

type fakeSession struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *fakeSession) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func newRelayServer(t *testing.T, exchanger auth.Exchanger, session auth.Session) (*LoginRelay, *httptest.Server) {
	t.Helper()

	history := nav.NewHistory("/login")
	handler := auth.NewCallbackHandler(exchanger, session, history, notify.NewCenter(nil), nil)
	relay := NewLoginRelay(handler, history)

	router := NewBasicRouter()
	router.Handler(relay)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return relay, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	return resp.StatusCode, string(body)
}

func TestLoginRelay(t *testing.T) {
	t.Run("successful redirect completes the flow", func(t *testing.T) {
		exchanger := &tu.CountingExchanger{}
		session := &fakeSession{}
		relay, ts := newRelayServer(t, exchanger, session)

		status, body := get(t, ts.URL+"/auth/google/callback?code=abc123")

		if status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
		if !strings.Contains(body, "Login Successful") {
			t.Errorf("expected success page, got %q", body)
		}
		if exchanger.Calls() != 1 {
			t.Errorf("expected one exchange, got %d", exchanger.Calls())
		}

		select {
		case result := <-relay.Result():
			if result.Error() != nil {
				t.Errorf("expected successful result, got %v", result.Error())
			}
		case <-time.After(2 * time.Second):
			t.Fatal("result never arrived")
		}
	})

	t.Run("provider error redirect reports failure", func(t *testing.T) {
		exchanger := &tu.CountingExchanger{}
		relay, ts := newRelayServer(t, exchanger, &fakeSession{})

		status, body := get(t, ts.URL+"/auth/google/callback?error=access_denied")

		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
		if !strings.Contains(body, "Login Failed") {
			t.Errorf("expected failure page, got %q", body)
		}
		if exchanger.Calls() != 0 {
			t.Errorf("expected no exchange, got %d", exchanger.Calls())
		}

		select {
		case result := <-relay.Result():
			if result.Error() == nil {
				t.Error("expected failed result")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("result never arrived")
		}
	})

	t.Run("requests without callback parameters are not redirects", func(t *testing.T) {
		exchanger := &tu.CountingExchanger{}
		_, ts := newRelayServer(t, exchanger, &fakeSession{})

		status, _ := get(t, ts.URL+"/auth/favicon.ico")

		if status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", status)
		}
		if exchanger.Calls() != 0 {
			t.Errorf("expected no exchange, got %d", exchanger.Calls())
		}
	})

	t.Run("replayed redirect is rejected", func(t *testing.T) {
		exchanger := &tu.CountingExchanger{}
		_, ts := newRelayServer(t, exchanger, &fakeSession{})

		if status, _ := get(t, ts.URL+"/auth/google/callback?code=abc123"); status != http.StatusOK {
			t.Fatalf("expected first redirect to succeed, got %d", status)
		}

		status, body := get(t, ts.URL+"/auth/google/callback?code=abc123")

		if status != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", status)
		}
		if !strings.Contains(body, "already processed") {
			t.Errorf("expected replay message, got %q", body)
		}
		if exchanger.Calls() != 1 {
			t.Errorf("expected exactly one exchange, got %d", exchanger.Calls())
		}
	})

	t.Run("routes serve the auth subtree", func(t *testing.T) {
		relay := NewLoginRelay(nil, nil)

		routes := relay.Routes()
		if len(routes) != 1 || routes[0] != "/auth/" {
			t.Errorf("expected /auth/ subtree, got %v", routes)
		}
	})
}
