package model

import "time"

// ExecutionSession aggregates per-user execution statistics.
//
// One row per user, updated after every terminal result (including security
// violations and timeouts — every attempt counts as an execution, only runs
// that finish with StatusSuccess count as successes). The repository is
// responsible for making concurrent updates to the same user safe.
type ExecutionSession struct {
	UserID          string    `json:"user_id"`
	TotalExecutions int64     `json:"total_executions"`
	SuccessCount    int64     `json:"success_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SuccessRate returns the fraction of executions that succeeded, in [0, 1].
// A user with no executions has a rate of 0 — we never divide by zero.
func (s *ExecutionSession) SuccessRate() float64 {
	if s.TotalExecutions == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalExecutions)
}
