package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// interpretedRunner runs source straight through an interpreter. Prepare and
// Run are the whole lifecycle; there is no binary to produce or clean up.
type interpretedRunner struct {
	spec LanguageSpec
}

func (r *interpretedRunner) Language() string {
	return r.spec.ID
}

func (r *interpretedRunner) Prepare(dir, code string) (string, error) {
	path := filepath.Join(dir, r.spec.SourceFile)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("writing %s source: %w", r.spec.ID, err)
	}
	return path, nil
}

func (r *interpretedRunner) Run(ctx context.Context, artifact string, limits Limits) Outcome {
	argv, err := buildCommand(r.spec.RunTpl, templateVars(r.spec, artifact))
	if err != nil {
		return Outcome{SpawnError: err, ExitCode: -1}
	}
	return runProcess(ctx, argv, filepath.Dir(artifact), limits.WallTimeout, limits.MaxOutputBytes)
}
