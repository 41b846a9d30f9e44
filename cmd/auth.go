package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chorus-music/chorus/internal/auth"
	"github.com/chorus-music/chorus/internal/models"
	"github.com/chorus-music/chorus/internal/nav"
	"github.com/chorus-music/chorus/internal/server"
	"github.com/chorus-music/chorus/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin establishes a session, either through an identity provider in the
// browser or directly with a username and password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd.String("config"))

	if username := cmd.String("username"); username != "" {
		return r.passwordLogin(ctx, username, cmd.String("password"))
	}

	return r.browserLogin(ctx, cmd.String("provider"))
}

// browserLogin runs the OAuth flow: a local HTTP server receives the
// provider's redirect, the callback handler exchanges the code, and the
// resulting session cookies are saved for later invocations.
func (r *Runner) browserLogin(ctx context.Context, provider string) error {
	loginURL, err := r.api.ProviderURL(ctx, provider)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	history := nav.NewHistory("/login")
	handler := auth.NewCallbackHandler(r.api, r.session, history, r.notifier, r.logger)
	relay := server.NewLoginRelay(handler, history)

	router := server.NewBasicRouter()
	router.Handler(relay)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login relay for %s at %v", provider, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s login...\n", provider)
	if err := shared.OpenBrowser(loginURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.LoginResult

	select {
	case result = <-relay.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if token := r.api.SessionCookies(); token != nil {
		r.api.SetToken(token)
		r.session.SetToken(token)
		if err := r.persistSession(provider, token); err != nil {
			r.logger.Warn("failed to save session", "error", err)
		}
	}

	r.writePlainln("✓ Login successful")
	if account := r.session.Account(); account != nil {
		r.writePlain("✓ Logged in as %s\n", account.Username)
	}

	return nil
}

// passwordLogin authenticates directly against the backend's form login
// endpoint, prompting for the password when it was not passed as a flag.
func (r *Runner) passwordLogin(ctx context.Context, username, password string) error {
	if password == "" {
		r.writePlain("Password: ")
		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("%w: password is required", shared.ErrMissingArgument)
		}
		password = strings.TrimSpace(line)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrMissingArgument)
	}

	creds, err := r.api.PasswordLogin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    creds.TokenType,
	}
	r.api.SetToken(token)
	r.session.SetToken(token)

	if err := r.session.Login(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := r.persistSession("password", token); err != nil {
		r.logger.Warn("failed to save session", "error", err)
	}

	account := r.session.Account()
	r.writePlainln("✓ Logged in as %s", account.Username)

	return nil
}

// AuthStatus shows the current session, verifying it with the backend when
// reachable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, err := r.openDatabase()
	if err != nil {
		return err
	}

	persisted, err := repo.Current()
	if errors.Is(err, shared.ErrSessionNotFound) {
		r.writePlain("Not logged in. Run: chorus auth login\n")
		return nil
	}
	if err != nil {
		return err
	}

	if !r.session.Restore(persisted) {
		r.writePlain("Session expired. Run: chorus auth login\n")
		return nil
	}
	r.api.SetToken(r.session.Token())

	account, err := r.api.Me(ctx)
	if err != nil {
		r.logger.Debug("failed to verify session with backend", "error", err)
		account = r.session.Account()
	}

	if useJSON {
		return r.writeJSON(account, pretty)
	}

	r.writePlain("Logged in as %s\n", account.Username)
	if account.Email != "" {
		r.writePlain("  Email: %s\n", account.Email)
	}
	r.writePlain("  Provider: %s\n", persisted.Provider())

	return nil
}

// AuthLogout tears down the backend session and soft-deletes saved sessions.
// Local state is cleared even when the backend is unreachable.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.openDatabase()
	if err != nil {
		return err
	}

	if persisted, err := repo.Current(); err == nil {
		r.session.Restore(persisted)
		r.api.SetToken(r.session.Token())
	}

	if err := r.session.Logout(ctx); err != nil {
		r.logger.Warn("backend logout failed", "error", err)
	}
	r.api.SetToken(nil)

	if err := repo.DeleteAll(); err != nil {
		return err
	}

	r.writePlainln("✓ Logged out")

	return nil
}

// persistSession replaces any saved sessions with one for the just-completed
// login. The account must already be populated on the session context.
func (r *Runner) persistSession(provider string, token *oauth2.Token) error {
	account := r.session.Account()
	if account == nil || token == nil {
		return nil
	}

	repo, err := r.openDatabase()
	if err != nil {
		return err
	}

	if err := repo.DeleteAll(); err != nil {
		return err
	}

	session := models.NewSession(0, provider, account.Username, account.Email, *token)
	return repo.Create(session)
}

// loadConfig reloads configuration from the given path when the file exists.
func (r *Runner) loadConfig(path string) {
	if path == "" {
		return
	}
	if config, err := shared.LoadConfig(path); err == nil {
		r.config = config
	}
}
