package docker

import (
	"time"
)

// Runtime describes how to run code for one language: which image to use
// and the command that receives the code as its final argument.
type Runtime struct {
	Image   string
	Command []string
}

// Config holds the configuration for Docker execution.
type Config struct {
	// Runtimes maps catalog language names to their sandbox runtime.
	// Languages without an entry cannot be run.
	Runtimes map[string]Runtime
	// DefaultLanguage names the runtime the pool pre-warms. Other
	// languages get a cold container per run.
	DefaultLanguage string
	// MemoryLimit is the maximum amount of memory a container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs a container can use.
	CPULimit float64
	// Timeout is the maximum amount of time one run can take.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
}

// DefaultConfig provides a sandbox with Python pre-warmed and a few other
// interpreters available cold.
func DefaultConfig() Config {
	return Config{
		Runtimes: map[string]Runtime{
			"Python":     {Image: "python:3.12-alpine", Command: []string{"python", "-c"}},
			"JavaScript": {Image: "node:22-alpine", Command: []string{"node", "-e"}},
			"Ruby":       {Image: "ruby:3.3-alpine", Command: []string{"ruby", "-e"}},
		},
		DefaultLanguage: "Python",
		// 128 MB memory limit
		MemoryLimit: 128 * 1024 * 1024,
		// 0.5 CPU shares
		CPULimit: 0.5,
		Timeout:  5 * time.Second,
		PoolSize: 3,
	}
}
