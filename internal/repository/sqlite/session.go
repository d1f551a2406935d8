package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// the first call site that passes *DB around.
var _ repository.SessionRepository = (*DB)(nil)

// Record bumps a user's execution counters.
//
// KEY CONCEPTS:
//
// 1. UPSERT (INSERT ... ON CONFLICT DO UPDATE):
//    The first execution for a user INSERTs the row; every later one takes
//    the ON CONFLICT branch and increments in place. One atomic statement —
//    no SELECT-then-UPDATE window where two concurrent executions could
//    both read the same count and lose an increment.
//
// 2. excluded.*:
//    Inside the DO UPDATE clause, `excluded` refers to the row the INSERT
//    tried to add. excluded.success_count is 1 or 0 depending on this
//    execution's outcome, so the same statement serves both cases.
func (db *DB) Record(ctx context.Context, userID string, success bool) error {
	succ := 0
	if success {
		succ = 1
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (user_id, total_executions, success_count, updated_at)
		 VALUES (?, 1, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     total_executions = total_executions + 1,
		     success_count    = success_count + excluded.success_count,
		     updated_at       = excluded.updated_at`,
		userID,
		succ,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording execution for %s: %w", userID, err)
	}

	return nil
}

// Get retrieves one user's accumulated session counters.
//
// sql.ErrNoRows is not really an error — it just means this user has never
// executed anything. We translate it to our app's NotFound error so the
// handler knows to return 404. (Checked with ==, not errors.Is, because
// database/sql doesn't wrap it.)
func (db *DB) Get(ctx context.Context, userID string) (*model.ExecutionSession, error) {
	var session model.ExecutionSession

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, total_executions, success_count, updated_at
		 FROM sessions
		 WHERE user_id = ?`,
		userID,
	).Scan(
		&session.UserID,
		&session.TotalExecutions,
		&session.SuccessCount,
		&session.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", userID)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", userID, err)
	}

	return &session, nil
}
