// Package config loads server configuration from the environment.
//
// A .env file in the working directory is read first (via godotenv) so local
// development doesn't need a wall of exports; real environment variables
// always win over .env values because godotenv never overrides them.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything cmd/server needs to wire the application.
type Config struct {
	Port   int    // PORT, default 8080
	DBPath string // DB_PATH, default data/codesnip.db

	// JWTSecret signs access tokens. The server refuses to start without it —
	// an API whose auth silently doesn't work is worse than one that fails fast.
	JWTSecret string // JWT_SECRET

	// GitHub OAuth sign-in is optional: leave the client ID empty and the
	// OAuth routes are simply not registered.
	GitHubClientID     string // GITHUB_CLIENT_ID
	GitHubClientSecret string // GITHUB_CLIENT_SECRET
	GitHubCallbackURL  string // GITHUB_CALLBACK_URL, defaults to localhost

	Debug bool // DEBUG=1 enables debug-level logging
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file just means "environment only".
	_ = godotenv.Load()

	cfg := &Config{
		Port:               8080,
		DBPath:             "data/codesnip.db",
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		Debug:              os.Getenv("DEBUG") == "1",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set (try: openssl rand -hex 32)")
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}
