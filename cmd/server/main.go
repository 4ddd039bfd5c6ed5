// Package main is the entry point for the codesnip server. It stays
// minimal: load configuration, build the logger, try to bring up the
// optional Docker sandbox, then hand everything to the server package.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/manterx/codesnip/internal/config"
	"github.com/manterx/codesnip/internal/executor"
	"github.com/manterx/codesnip/internal/executor/docker"
	"github.com/manterx/codesnip/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// The database lives in a subdirectory by default; make sure it exists.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The Docker sandbox is optional: without a daemon the server still
	// runs, and the snippet run endpoint reports itself unavailable.
	var exec executor.Executor
	dockerExec, err := docker.New(docker.DefaultConfig(), logger)
	if err != nil {
		logger.Warn("Docker executor unavailable, snippet runs are disabled",
			slog.String("error", err.Error()),
		)
	} else {
		exec = dockerExec
		defer dockerExec.Close()
	}

	srv, err := server.New(cfg, exec, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
