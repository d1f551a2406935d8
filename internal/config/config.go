// Package config loads application configuration from environment variables.
//
// WHY A CONFIG PACKAGE?
// Scattering os.Getenv calls around the codebase makes it impossible to see
// the full configuration surface in one place. Here every knob is one struct
// field, with its env var name, default, and type all declared together.
//
// We use cleanenv instead of hand-rolling the parsing: the `env:` tag names
// the variable, `env-default:` supplies the fallback, and ReadEnv fills the
// struct in one call — including type conversion (string → int) with proper
// error messages when someone exports PORT=banana.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Sandbox backend names accepted in SANDBOX_BACKEND.
const (
	BackendProcess = "process"
	BackendDocker  = "docker"
)

// Config holds every runtime setting for the server.
//
// Durations are configured in whole seconds (EXEC_TIMEOUT_SECONDS=15) rather
// than Go duration strings, because the people setting these variables are
// platform operators, not Go programmers. The typed accessors below convert.
type Config struct {
	Port           int    `env:"PORT" env-default:"8080"`
	DBPath         string `env:"DB_PATH" env-default:""` // empty → in-memory session store
	SandboxBackend string `env:"SANDBOX_BACKEND" env-default:"process"`

	ExecTimeoutSeconds    int `env:"EXEC_TIMEOUT_SECONDS" env-default:"15"`
	CompileTimeoutSeconds int `env:"COMPILE_TIMEOUT_SECONDS" env-default:"20"`

	MaxOutputBytes int64 `env:"MAX_OUTPUT_BYTES" env-default:"65536"`
	MaxMemoryBytes int64 `env:"MAX_MEMORY_BYTES" env-default:"134217728"`
	MaxCodeBytes   int   `env:"MAX_CODE_BYTES" env-default:"102400"`

	WorkDir string `env:"WORK_DIR" env-default:""` // empty → os.TempDir()
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT must be in 1-65535, got %d", cfg.Port)
	}
	if cfg.SandboxBackend != BackendProcess && cfg.SandboxBackend != BackendDocker {
		return nil, fmt.Errorf("config: SANDBOX_BACKEND must be %q or %q, got %q",
			BackendProcess, BackendDocker, cfg.SandboxBackend)
	}
	if cfg.ExecTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config: EXEC_TIMEOUT_SECONDS must be positive, got %d", cfg.ExecTimeoutSeconds)
	}
	if cfg.CompileTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config: COMPILE_TIMEOUT_SECONDS must be positive, got %d", cfg.CompileTimeoutSeconds)
	}
	if cfg.MaxOutputBytes <= 0 {
		return nil, fmt.Errorf("config: MAX_OUTPUT_BYTES must be positive, got %d", cfg.MaxOutputBytes)
	}
	if cfg.MaxCodeBytes <= 0 {
		return nil, fmt.Errorf("config: MAX_CODE_BYTES must be positive, got %d", cfg.MaxCodeBytes)
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}

	return &cfg, nil
}

// ExecTimeout is the wall-clock limit for one run of student code.
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.ExecTimeoutSeconds) * time.Second
}

// CompileTimeout is the wall-clock limit for the compile phase alone.
// Kept separate from ExecTimeout so a pathological source file can't eat
// the whole run budget inside the compiler.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutSeconds) * time.Second
}
