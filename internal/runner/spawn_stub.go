//go:build !linux

package runner

import (
	"context"
	"errors"
	"time"
)

// Process-group supervision, Pdeathsig and rusage accounting are Linux
// features. Other platforms get a build that compiles but refuses to spawn,
// which keeps the rest of the module testable anywhere.
func runProcess(_ context.Context, _ []string, _ string, _ time.Duration, _ int64) Outcome {
	return Outcome{
		SpawnError: errors.New("process sandbox requires linux"),
		ExitCode:   -1,
	}
}
