package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/executor"
)

// Executor implements executor.Executor using Docker containers. The
// default language's containers are pre-warmed by the pool; other runtimes
// are created per request.
type Executor struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *Pool
}

var _ executor.Executor = (*Executor)(nil)

// New creates a Docker Executor, pulls the pre-warmed runtime's image, and
// starts the pool. Images for cold runtimes are pulled lazily on first use.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	defaultRuntime, ok := cfg.Runtimes[cfg.DefaultLanguage]
	if !ok {
		return nil, fmt.Errorf("docker: default language %q has no runtime", cfg.DefaultLanguage)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker: creating client: %w", err)
	}

	exec := &Executor{
		cli:    cli,
		config: cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := exec.ensureImage(ctx, defaultRuntime.Image); err != nil {
		cli.Close()
		return nil, err
	}

	exec.pool = NewPool(cli, cfg, defaultRuntime.Image, logger)
	exec.pool.Start()

	return exec, nil
}

// Close shuts down the executor pool and docker client.
func (e *Executor) Close() error {
	e.pool.Stop()
	return e.cli.Close()
}

// ensureImage pulls an image and blocks until the pull completes.
func (e *Executor) ensureImage(ctx context.Context, img string) error {
	e.logger.Info("ensuring docker image is available", slog.String("image", img))
	reader, err := e.cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("docker: pulling image %s: %w", img, err)
	}
	defer reader.Close()
	// Read everything to block until the pull is complete.
	io.Copy(io.Discard, reader)
	return nil
}

// Execute runs the code under the requested language's runtime. A language
// with no configured runtime is a validation error, so the endpoint reports
// it as a client mistake rather than a server failure.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	runtime, ok := e.config.Runtimes[req.Language]
	if !ok {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("language %q has no execution runtime", req.Language))
	}

	start := time.Now()

	containerID, err := e.acquireContainer(ctx, req.Language, runtime)
	if err != nil {
		return nil, err
	}

	// The container is single-use either way: pool containers are not
	// returned after running untrusted code.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := e.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		})
		if err != nil {
			e.logger.Error("failed to remove container", slog.String("id", containerID), slog.String("error", err.Error()))
		}
	}()

	executeCtx, executeCancel := context.WithTimeout(ctx, e.config.Timeout)
	defer executeCancel()

	// The container idles on `sleep infinity`, so the code runs as a
	// docker exec with the snippet appended to the runtime command.
	execConfig := container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          append(append([]string{}, runtime.Command...), req.Code),
	}

	execResp, err := e.cli.ContainerExecCreate(executeCtx, containerID, execConfig)
	if err != nil {
		return nil, fmt.Errorf("docker: creating exec: %w", err)
	}

	attachResp, err := e.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("docker: attaching to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes the combined stream into stdout and stderr.
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	var exitCode int

	select {
	case <-done:
		inspectResp, err := e.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			exitCode = inspectResp.ExitCode
		}
	case <-executeCtx.Done():
		// 124 matches the unix timeout command's convention.
		exitCode = 124
		stderr.WriteString("\nExecution timed out.\n")
	}

	return &executor.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}

// acquireContainer returns a ready container for the language: pre-warmed
// from the pool for the default language, freshly created otherwise.
func (e *Executor) acquireContainer(ctx context.Context, language string, runtime Runtime) (string, error) {
	if language == e.config.DefaultLanguage {
		id, err := e.pool.GetContainer(ctx)
		if err != nil {
			return "", fmt.Errorf("docker: getting container from pool: %w", err)
		}
		return id, nil
	}

	if err := e.ensureImage(ctx, runtime.Image); err != nil {
		return "", err
	}
	id, err := e.pool.CreateContainer(runtime.Image)
	if err != nil {
		return "", fmt.Errorf("docker: creating container for %s: %w", language, err)
	}
	return id, nil
}
