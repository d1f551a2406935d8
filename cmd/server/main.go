// Package main is the entry point for the code execution server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, stores, sandbox backends, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate, cmd/cli).
// Each gets its own directory with its own main.go.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nbekzat/codelab/internal/config"
	"github.com/nbekzat/codelab/internal/executor"
	"github.com/nbekzat/codelab/internal/executor/docker"
	"github.com/nbekzat/codelab/internal/executor/process"
	"github.com/nbekzat/codelab/internal/handler"
	"github.com/nbekzat/codelab/internal/repository"
	"github.com/nbekzat/codelab/internal/repository/memory"
	sqliteRepo "github.com/nbekzat/codelab/internal/repository/sqlite"
	"github.com/nbekzat/codelab/internal/runner"
	"github.com/nbekzat/codelab/internal/security"
	"github.com/nbekzat/codelab/internal/server"
	"github.com/nbekzat/codelab/internal/service"
	"github.com/nbekzat/codelab/internal/translator"
)

// main stays tiny: build a logger, call run, translate failure into an exit code.
//
// WHY A run() FUNCTION?
// os.Exit terminates the program immediately and SKIPS deferred calls. We hold
// resources that must be released on the way out — a SQLite connection with a
// WAL to flush, and possibly a pool of warm Docker containers that would
// otherwise be left running on the host. Putting the real work in run() means
// every defer fires when run returns, and main is the only place that exits.
func main() {
	// slog.New creates a structured logger. slog.NewTextHandler outputs
	// human-readable logs; os.Stdout means logs go to the terminal.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// === 1. READ CONFIGURATION ===
	// Every knob lives in one struct, filled from environment variables.
	// Load also validates, so a typo like PORT=banana fails here, loudly,
	// instead of surfacing as a weird bind error later.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. SESSION STORE ===
	// Per-user execution statistics survive restarts only when a database
	// path is configured. An empty DB_PATH selects the in-memory store,
	// which is the right default for local development and for tests.
	//
	// Both stores implement repository.SessionRepository, so everything
	// downstream is oblivious to the choice.
	var sessions repository.SessionRepository
	if cfg.DBPath != "" {
		// Ensure the parent directory exists (like `mkdir -p`).
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		sessions = db
		logger.Info("session store ready", slog.String("store", "sqlite"), slog.String("path", cfg.DBPath))
	} else {
		sessions = memory.New()
		logger.Info("session store ready", slog.String("store", "memory"))
	}

	// === 3. CODE PIPELINE ===
	// The stateless pieces: dialect translator, security validator, and the
	// registry of runnable languages. None of them hold resources, so there
	// is nothing to close.
	trans := translator.New(logger)
	validator := security.New(logger)
	registry := runner.NewRegistry()

	// === 4. SANDBOX BACKEND ===
	// Two interchangeable implementations of executor.Executor:
	//
	//   process — supervised child processes on this host. Supports every
	//             registry language, including the compiled ones. Default.
	//   docker  — one container per run, pre-warmed pool for the busiest
	//             language. Stronger isolation, interpreted languages only.
	//
	// The docker backend owns real resources (a client connection and warm
	// containers), hence the deferred Close.
	var sandbox executor.Executor
	switch cfg.SandboxBackend {
	case config.BackendDocker:
		dockerCfg := docker.DefaultConfig()
		dockerCfg.Timeout = cfg.ExecTimeout()
		dockerCfg.MaxOutputBytes = cfg.MaxOutputBytes
		dockerCfg.MemoryLimit = cfg.MaxMemoryBytes
		dockerExec, err := docker.New(dockerCfg, logger)
		if err != nil {
			return fmt.Errorf("starting docker sandbox: %w", err)
		}
		defer dockerExec.Close()
		sandbox = dockerExec
	default:
		sandbox = process.New(registry, process.Config{
			WorkDir:        cfg.WorkDir,
			WallTimeout:    cfg.ExecTimeout(),
			CompileTimeout: cfg.CompileTimeout(),
			MaxOutputBytes: cfg.MaxOutputBytes,
		}, logger)
	}
	logger.Info("sandbox ready", slog.String("backend", cfg.SandboxBackend))

	// === 5. SERVICES ===
	// The service layer glues the pipeline together. Note that it receives
	// interfaces, not the concrete types built above — the registry doubles
	// as the LanguageCatalog, the translator as both translation engines.
	executions := service.NewExecutionService(trans, validator, registry, sandbox, sessions, cfg.MaxCodeBytes, logger)
	translations := service.NewTranslationService(trans, cfg.MaxCodeBytes, logger)
	sessionStats := service.NewSessionService(sessions, logger)

	// === 6. HANDLERS AND SERVER ===
	// A code submission legitimately occupies its connection for the whole
	// compile and execution budget, so the server's write timeout is derived
	// from those budgets instead of being a fixed guess.
	handlers := server.Handlers{
		Execute:   handler.NewExecuteHandler(executions, logger),
		Translate: handler.NewTranslateHandler(translations, logger),
		Sessions:  handler.NewSessionHandler(sessionStats, logger),
	}
	srv := server.New(server.Config{
		Port:         cfg.Port,
		WriteTimeout: cfg.CompileTimeout() + cfg.ExecTimeout() + 10*time.Second,
	}, handlers, logger)

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	return srv.Start()
}
