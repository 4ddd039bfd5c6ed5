package docker_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/executor"
	"github.com/manterx/codesnip/internal/executor/docker"
)

func TestDockerExecutor(t *testing.T) {
	// Requires a local docker daemon.
	if os.Getenv("CI") != "" {
		t.Skip("Skipping docker test in CI environment")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := docker.DefaultConfig()
	// reduce pool size for local test speed
	cfg.PoolSize = 1

	exec, err := docker.New(cfg, logger)
	assert.NoError(t, err, "Should initialize docker executor without error")
	defer exec.Close()

	// Give the pool manager a moment to warm up containers.
	time.Sleep(2 * time.Second)

	t.Run("successful execution", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.Request{
			Language: "Python",
			Code:     `print("Hello from test sandbox!")`,
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "Hello from test sandbox!")
		assert.Empty(t, res.Stderr)
		assert.Greater(t, res.Duration, time.Duration(0))
	})

	t.Run("syntax error", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.Request{
			Language: "Python",
			Code:     `print("Missing parenthesis"`,
		})
		assert.NoError(t, err)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.Contains(t, res.Stderr, "SyntaxError")
		assert.Empty(t, res.Stdout)
	})

	t.Run("unknown language", func(t *testing.T) {
		_, err := exec.Execute(context.Background(), executor.Request{
			Language: "COBOL",
			Code:     "DISPLAY 'HELLO'.",
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("cold runtime execution", func(t *testing.T) {
		// JavaScript is not the pre-warmed default, so this exercises the
		// on-demand container path.
		res, err := exec.Execute(context.Background(), executor.Request{
			Language: "JavaScript",
			Code:     `console.log(21 * 2)`,
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "42")
	})

	t.Run("infinite loop timeout", func(t *testing.T) {
		cfg.Timeout = 2 * time.Second
		fastExec, err := docker.New(cfg, logger)
		assert.NoError(t, err)
		defer fastExec.Close()
		time.Sleep(1 * time.Second) // wait for pool

		res, err := fastExec.Execute(context.Background(), executor.Request{
			Language: "Python",
			Code:     `while True: pass`,
		})
		assert.NoError(t, err)
		assert.Equal(t, 124, res.ExitCode)
		assert.Contains(t, res.Stderr, "timed out")
	})
}
