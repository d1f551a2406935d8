package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// compiledRunner adds a compile phase in front of the run. The compiler gets
// its own, shorter wall-clock budget: a program stuck in compilation should
// fail fast rather than eat the whole execution window.
type compiledRunner struct {
	spec LanguageSpec
}

func (r *compiledRunner) Language() string {
	return r.spec.ID
}

func (r *compiledRunner) Prepare(dir, code string) (string, error) {
	path := filepath.Join(dir, r.spec.SourceFile)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("writing %s source: %w", r.spec.ID, err)
	}
	return path, nil
}

func (r *compiledRunner) Run(ctx context.Context, artifact string, limits Limits) Outcome {
	vars := templateVars(r.spec, artifact)
	dir := filepath.Dir(artifact)

	compileArgv, err := buildCommand(r.spec.CompileTpl, vars)
	if err != nil {
		return Outcome{SpawnError: err, ExitCode: -1}
	}

	compileOut := runProcess(ctx, compileArgv, dir, limits.CompileTimeout, limits.MaxOutputBytes)
	switch {
	case compileOut.SpawnError != nil:
		return compileOut
	case compileOut.Canceled:
		return compileOut
	case compileOut.TimedOut:
		return Outcome{
			CompileFailed: true,
			Stderr:        fmt.Sprintf("compilation timed out after %s", limits.CompileTimeout),
			ExitCode:      compileOut.ExitCode,
			Duration:      compileOut.Duration,
		}
	case compileOut.ExitCode != 0:
		// Compiler diagnostics are the learner-facing payload here.
		return Outcome{
			CompileFailed: true,
			Stdout:        compileOut.Stdout,
			Stderr:        compileOut.Stderr,
			ExitCode:      compileOut.ExitCode,
			Duration:      compileOut.Duration,
			Truncated:     compileOut.Truncated,
		}
	}

	// The binary exists only for the duration of this run. Removing it here
	// (and not relying on scratch-dir teardown alone) keeps even long-lived
	// work dirs free of stale executables.
	binary := vars["{bin}"]
	defer os.Remove(binary)

	runArgv, err := buildCommand(r.spec.RunTpl, vars)
	if err != nil {
		return Outcome{SpawnError: err, ExitCode: -1}
	}
	return runProcess(ctx, runArgv, dir, limits.WallTimeout, limits.MaxOutputBytes)
}
