// Package executor defines the interface for running snippet code in an
// isolated environment. The docker subpackage provides the production
// implementation; the server treats the whole feature as optional and
// disables the run endpoint when no executor is configured.
package executor

import (
	"context"
	"time"
)

// Request asks for a piece of code to be run under a named language. The
// language must match a configured runtime by catalog name.
type Request struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Result carries the output and status of a run.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Executor runs code in an isolated environment.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}
