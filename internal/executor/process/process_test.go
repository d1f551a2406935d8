package process_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/executor"
	"github.com/nbekzat/codelab/internal/executor/process"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/runner"
)

func requirePython(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("process sandbox requires linux")
	}
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed, skipping")
	}
}

func newTestExecutor(t *testing.T, cfg process.Config) *process.Executor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return process.New(runner.NewRegistry(), cfg, logger)
}

func TestProcessExecutor(t *testing.T) {
	requirePython(t)

	exe := newTestExecutor(t, process.DefaultConfig())

	t.Run("successful execution", func(t *testing.T) {
		res, err := exe.Execute(context.Background(), executor.Request{
			Code:     `print("Hello from test sandbox!")`,
			Language: "python",
		})
		assert.NoError(t, err)
		assert.Equal(t, model.StatusSuccess, res.Status)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "Hello from test sandbox!")
		assert.Empty(t, res.Stderr)
		assert.Greater(t, res.ExecutionTime, 0.0)
	})

	t.Run("runtime error", func(t *testing.T) {
		res, err := exe.Execute(context.Background(), executor.Request{
			Code:     `raise ValueError("boom")`,
			Language: "python",
		})
		assert.NoError(t, err)
		assert.Equal(t, model.StatusFailure, res.Status)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.Contains(t, res.Stderr, "ValueError")
	})

	t.Run("multiline logic", func(t *testing.T) {
		res, err := exe.Execute(context.Background(), executor.Request{
			Code: strings.Join([]string{
				"def fib(n):",
				"    if n <= 1: return n",
				"    return fib(n-1) + fib(n-2)",
				"print(fib(10))",
			}, "\n"),
			Language: "python",
		})
		assert.NoError(t, err)
		assert.Equal(t, model.StatusSuccess, res.Status)
		assert.Contains(t, res.Stdout, "55")
	})
}

func TestProcessExecutorTimeout(t *testing.T) {
	requirePython(t)

	cfg := process.DefaultConfig()
	cfg.WallTimeout = 1 * time.Second
	exe := newTestExecutor(t, cfg)

	res, err := exe.Execute(context.Background(), executor.Request{
		Code:     "while True: pass",
		Language: "python",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusTimeout, res.Status)
	assert.Equal(t, 124, res.ExitCode)
}

func TestProcessExecutorTruncatesOutput(t *testing.T) {
	requirePython(t)

	cfg := process.DefaultConfig()
	cfg.MaxOutputBytes = 256
	exe := newTestExecutor(t, cfg)

	res, err := exe.Execute(context.Background(), executor.Request{
		Code:     `print("y" * 100000)`,
		Language: "python",
	})
	assert.NoError(t, err)
	assert.Equal(t, 256+len(runner.OutputTruncationMarker), len(res.Stdout)+len(res.Stderr))
	assert.True(t, strings.HasSuffix(res.Stdout, runner.OutputTruncationMarker))
}

func TestProcessExecutorCleansScratchDir(t *testing.T) {
	requirePython(t)

	cfg := process.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	exe := newTestExecutor(t, cfg)

	_, err := exe.Execute(context.Background(), executor.Request{
		Code:     `print("leaves nothing behind")`,
		Language: "python",
	})
	assert.NoError(t, err)

	entries, err := os.ReadDir(cfg.WorkDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "scratch directories should be removed after the run")
}

func TestProcessExecutorMissingToolchain(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process sandbox requires linux")
	}

	// Point PATH at an empty directory so the interpreter cannot be found,
	// the same failure a host without python3 would produce.
	t.Setenv("PATH", t.TempDir())

	cfg := process.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	exe := newTestExecutor(t, cfg)

	res, err := exe.Execute(context.Background(), executor.Request{
		Code:     `print("unreachable")`,
		Language: "python",
	})
	assert.NoError(t, err, "a missing interpreter is a result, not a fault")
	assert.Equal(t, model.StatusFailure, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "could not start python")
}

func TestProcessExecutorUnsupportedLanguage(t *testing.T) {
	// No interpreter needed: the registry lookup fails before anything is
	// written to disk.
	cfg := process.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	exe := newTestExecutor(t, cfg)

	res, err := exe.Execute(context.Background(), executor.Request{
		Code:     "whatever",
		Language: "brainfuck",
	})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, apperror.ErrUnsupportedLanguage))

	entries, readErr := os.ReadDir(cfg.WorkDir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries, "no artifact may be created for an unsupported language")
}
