package repository

import (
	"context"

	"github.com/nbekzat/codelab/internal/model"
)

// SessionRepository tracks per-user execution statistics.
//
// Record is called exactly once for every execution that reaches a terminal
// result — successes, failures, timeouts, security refusals alike. Get
// returns the accumulated counters for one user, or a NotFound error when
// the user has never executed anything.
type SessionRepository interface {
	Record(ctx context.Context, userID string, success bool) error
	Get(ctx context.Context, userID string) (*model.ExecutionSession, error)
}
