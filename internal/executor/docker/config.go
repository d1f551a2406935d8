package docker

import (
	"time"
)

// Config holds the configuration for Docker execution.
type Config struct {
	// Images maps interpreted language ids to the container image that
	// runs them. Languages without an entry are refused by this backend.
	Images map[string]string
	// PoolLanguage is the language whose containers are pre-warmed. Other
	// languages pay the container start cost per request.
	PoolLanguage string
	// MemoryLimit is the maximum amount of memory a container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs a container can use.
	CPULimit float64
	// Timeout is the maximum amount of time one execution can take.
	Timeout time.Duration
	// MaxOutputBytes caps captured stdout+stderr combined.
	MaxOutputBytes int64
	// PoolSize is the number of pre-warmed containers to maintain.
	PoolSize int
}

// DefaultConfig provides sensible defaults for an interpreted-language sandbox.
func DefaultConfig() Config {
	return Config{
		Images: map[string]string{
			"python":     "python:3.12-alpine",
			"javascript": "node:20-alpine",
		},
		// Python is the translation target, so it sees the most traffic.
		PoolLanguage: "python",
		// 128 MB memory limit
		MemoryLimit: 128 * 1024 * 1024,
		// 0.5 CPU shares
		CPULimit:       0.5,
		Timeout:        15 * time.Second,
		MaxOutputBytes: 64 * 1024,
		PoolSize:       3,
	}
}

// poolImage returns the image backing the pre-warmed pool.
func (c Config) poolImage() string {
	return c.Images[c.PoolLanguage]
}
