package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nbekzat/codelab/internal/model"
)

// SessionService is the slice of the statistics layer this handler needs.
type SessionService interface {
	Get(ctx context.Context, userID string) (*model.ExecutionSession, error)
}

// SessionHandler serves per-user execution statistics.
type SessionHandler struct {
	sessions SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type sessionResponse struct {
	UserID          string  `json:"user_id"`
	TotalExecutions int64   `json:"total_executions"`
	SuccessCount    int64   `json:"success_count"`
	SuccessRate     float64 `json:"success_rate"`
}

// HandleGet returns one user's accumulated execution counters.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	session, err := h.sessions.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:          session.UserID,
		TotalExecutions: session.TotalExecutions,
		SuccessCount:    session.SuccessCount,
		SuccessRate:     session.SuccessRate(),
	})
}
