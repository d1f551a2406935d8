// Package process is the default sandbox backend: it runs learner code as a
// supervised child process in a throwaway scratch directory.
//
// ISOLATION MODEL:
// Each request gets a fresh directory, a process group of its own, a wall
// clock, and a capped output budget. The directory is removed when the run
// finishes, whatever the outcome, so no artifact survives a request. This is
// lighter than the docker backend and fits deployments where the service
// itself already runs inside a container.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/nbekzat/codelab/internal/executor"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/runner"
)

// Config holds the tunables for process execution.
type Config struct {
	// WorkDir is where per-request scratch directories are created.
	// Empty means the system temp dir.
	WorkDir string
	// WallTimeout is the wall-clock budget for the run phase.
	WallTimeout time.Duration
	// CompileTimeout is the wall-clock budget for the compile phase.
	CompileTimeout time.Duration
	// MaxOutputBytes caps captured stdout+stderr combined.
	MaxOutputBytes int64
}

// DefaultConfig provides sensible defaults for a local sandbox.
func DefaultConfig() Config {
	return Config{
		WallTimeout:    15 * time.Second,
		CompileTimeout: 20 * time.Second,
		MaxOutputBytes: 64 * 1024,
	}
}

// Executor implements the executor.Executor interface with local processes.
type Executor struct {
	registry *runner.Registry
	config   Config
	logger   *slog.Logger
}

// New creates a process executor backed by the given language registry.
func New(registry *runner.Registry, cfg Config, logger *slog.Logger) *Executor {
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Executor{
		registry: registry,
		config:   cfg,
		logger:   logger,
	}
}

// Execute prepares the source in a scratch directory, runs it under limits
// and folds the raw outcome into a result. An unsupported language fails
// before any file is written.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*model.ExecutionResult, error) {
	run, err := e.registry.Lookup(req.Language)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(e.config.WorkDir, "run-"+xid.New().String()+"-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Error("failed to remove scratch dir",
				slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}()

	artifact, err := run.Prepare(dir, req.Code)
	if err != nil {
		return nil, fmt.Errorf("preparing %s artifact: %w", req.Language, err)
	}

	out := run.Run(ctx, artifact, runner.Limits{
		WallTimeout:    e.config.WallTimeout,
		CompileTimeout: e.config.CompileTimeout,
		MaxOutputBytes: e.config.MaxOutputBytes,
	})

	if out.Canceled {
		return nil, ctx.Err()
	}

	// A process that never started (interpreter or compiler missing from the
	// host) is still a terminal result for this request: the learner gets a
	// descriptive failure instead of an opaque server fault.
	if out.SpawnError != nil {
		e.logger.Error("sandbox could not start process",
			slog.String("language", req.Language),
			slog.String("error", out.SpawnError.Error()))
		return &model.ExecutionResult{
			Status:        model.StatusFailure,
			Stderr:        fmt.Sprintf("could not start %s: %v", req.Language, out.SpawnError),
			ExitCode:      -1,
			ExecutionTime: out.Duration.Seconds(),
		}, nil
	}

	result := &model.ExecutionResult{
		Stdout:        out.Stdout,
		Stderr:        out.Stderr,
		ExitCode:      out.ExitCode,
		ExecutionTime: out.Duration.Seconds(),
		MemoryUsed:    out.MemoryPeakBytes,
	}

	switch {
	case out.CompileFailed:
		result.Status = model.StatusCompilationError
	case out.TimedOut:
		result.Status = model.StatusTimeout
		// Same convention as the unix timeout command.
		result.ExitCode = 124
	case out.ExitCode == 0:
		result.Status = model.StatusSuccess
	default:
		result.Status = model.StatusFailure
	}

	e.logger.Debug("process execution finished",
		slog.String("language", req.Language),
		slog.String("status", string(result.Status)),
		slog.Int("exitCode", result.ExitCode),
		slog.Float64("seconds", result.ExecutionTime))

	return result, nil
}
