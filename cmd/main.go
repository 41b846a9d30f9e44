package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/chorus-music/chorus/internal/api"
	"github.com/chorus-music/chorus/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// The jar captures the session cookies the backend sets on login.
	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatalf("failed to create cookie jar: %v", err)
	}

	httpClient := &http.Client{
		Jar:     jar,
		Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second,
	}

	apiClient := api.NewClient(config.API.BaseURL, httpClient, config.API.RateLimit)

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    apiClient,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "chorus",
		Usage:    "Authenticate with and manage your Chorus account",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
