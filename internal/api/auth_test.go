package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	tu "github.com/chorus-music/chorus/internal/testing"
)

func clientFor(body string, status int) *Client {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	httpClient := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
	return NewClient("http://localhost:8000", httpClient, 0)
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds on the exact success message", func(t *testing.T) {
		client := clientFor(`{"message": "Authentication successful"}`, http.StatusOK)

		if err := client.ExchangeCode(ctx, "google", "abc123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rejects a 2xx response without the success message", func(t *testing.T) {
		client := clientFor(`{"message": "ok"}`, http.StatusOK)

		err := client.ExchangeCode(ctx, "google", "abc123")

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if !strings.Contains(apiErr.Detail, "unexpected response") {
			t.Errorf("expected unexpected-response detail, got %q", apiErr.Detail)
		}
	})

	t.Run("surfaces the backend detail on failure", func(t *testing.T) {
		client := clientFor(`{"detail": "Invalid authorization code"}`, http.StatusBadRequest)

		err := client.ExchangeCode(ctx, "google", "expired")

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if apiErr.Detail != "Invalid authorization code" {
			t.Errorf("expected backend detail, got %q", apiErr.Detail)
		}
		if apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", apiErr.Status)
		}
	})

	t.Run("falls back to a status message without a detail body", func(t *testing.T) {
		client := clientFor(`<html>bad gateway</html>`, http.StatusBadGateway)

		err := client.ExchangeCode(ctx, "google", "abc123")

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if !strings.Contains(apiErr.Error(), "502") {
			t.Errorf("expected status in message, got %q", apiErr.Error())
		}
	})

	t.Run("propagates transport failures", func(t *testing.T) {
		httpClient := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		client := NewClient("http://localhost:8000", httpClient, 0)

		err := client.ExchangeCode(ctx, "google", "abc123")

		if err == nil {
			t.Fatal("expected transport error")
		}
		var apiErr *Error
		if errors.As(err, &apiErr) {
			t.Error("expected a plain transport error, not *Error")
		}
	})
}

func TestCheckUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("reports availability", func(t *testing.T) {
		client := clientFor(`{"available": true}`, http.StatusOK)

		available, err := client.CheckUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !available {
			t.Error("expected username to be available")
		}
	})

	t.Run("reports taken usernames", func(t *testing.T) {
		client := clientFor(`{"available": false}`, http.StatusOK)

		available, err := client.CheckUsername(ctx, "admin")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if available {
			t.Error("expected username to be taken")
		}
	})

	t.Run("surfaces backend failures as errors", func(t *testing.T) {
		client := clientFor(`{"detail": "internal error"}`, http.StatusInternalServerError)

		if _, err := client.CheckUsername(ctx, "alice"); err == nil {
			t.Fatal("expected error from failing backend")
		}
	})
}

func TestProviderURL(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the login URL", func(t *testing.T) {
		client := clientFor(`{"url": "https://accounts.google.com/o/oauth2/auth?client_id=x"}`, http.StatusOK)

		got, err := client.ProviderURL(ctx, "google")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(got, "https://accounts.google.com") {
			t.Errorf("expected provider URL, got %q", got)
		}
	})

	t.Run("rejects a response without a URL", func(t *testing.T) {
		client := clientFor(`{}`, http.StatusOK)

		if _, err := client.ProviderURL(ctx, "google"); err == nil {
			t.Fatal("expected error for missing URL")
		}
	})
}

func TestPasswordLogin(t *testing.T) {
	t.Run("returns credentials", func(t *testing.T) {
		client := clientFor(`{"access_token": "at", "refresh_token": "rt", "token_type": "bearer"}`, http.StatusOK)

		creds, err := client.PasswordLogin(context.Background(), "alice", "hunter2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if creds.AccessToken != "at" || creds.RefreshToken != "rt" {
			t.Errorf("expected tokens from response, got %+v", creds)
		}
	})

	t.Run("surfaces invalid credentials", func(t *testing.T) {
		client := clientFor(`{"detail": "Incorrect username or password"}`, http.StatusUnauthorized)

		_, err := client.PasswordLogin(context.Background(), "alice", "wrong")

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if apiErr.Detail != "Incorrect username or password" {
			t.Errorf("expected backend detail, got %q", apiErr.Detail)
		}
	})
}
