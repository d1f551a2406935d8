// Package memory is an in-process session store for deployments that run
// without a database (DB_PATH left empty). Counters live for the lifetime of
// the server and vanish on restart, which is fine for local development and
// throwaway classroom instances.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/repository"
)

var _ repository.SessionRepository = (*Store)(nil)

// Store keeps per-user counters behind one mutex. Contention is not a
// concern at classroom scale, and a single lock keeps the increment and the
// read of both counters atomic without any upsert machinery.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.ExecutionSession
}

// New creates an empty in-memory session store.
func New() *Store {
	return &Store{sessions: make(map[string]*model.ExecutionSession)}
}

// Record bumps a user's execution counters.
func (s *Store) Record(_ context.Context, userID string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		session = &model.ExecutionSession{UserID: userID}
		s.sessions[userID] = session
	}
	session.TotalExecutions++
	if success {
		session.SuccessCount++
	}
	session.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of one user's session counters.
func (s *Store) Get(_ context.Context, userID string) (*model.ExecutionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, apperror.NotFound("session", userID)
	}
	copied := *session
	return &copied, nil
}
