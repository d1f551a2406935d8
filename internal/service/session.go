package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/repository"
)

// SessionService reads accumulated per-user execution statistics.
type SessionService struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions repository.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		logger:   logger,
	}
}

// Get returns one user's session counters.
// Returns apperror.ErrNotFound when the user has never executed anything.
func (s *SessionService) Get(ctx context.Context, userID string) (*model.ExecutionSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user id is required")
	}

	return s.sessions.Get(ctx, userID)
}
