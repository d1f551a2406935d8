package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/runner"
)

// ExecutionService is the slice of the orchestrator this handler needs.
type ExecutionService interface {
	Submit(ctx context.Context, req model.ExecutionRequest) (*model.ExecutionResult, error)
	Languages() []runner.LanguageInfo
}

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	executions ExecutionService
	logger     *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(executions ExecutionService, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		executions: executions,
		logger:     logger,
	}
}

// executeResponse is the wire shape every /execute reply uses — successes,
// learner failures and pipeline errors alike. Clients parse one shape and
// branch on `success`, never on response structure.
type executeResponse struct {
	Success       bool    `json:"success"`
	Output        string  `json:"output"`
	Error         *string `json:"error"` // null when the run produced no error text
	ExecutionTime float64 `json:"execution_time"`
	MemoryUsed    int64   `json:"memory_used"`
}

// HandleExecute processes an incoming code execution request.
//
// STATUS CODES:
//   - 200: the pipeline produced a terminal result — including failures,
//     timeouts and security refusals; `success` tells them apart
//   - 400: the request itself was malformed (bad JSON, empty code)
//   - 422: the language has no runner
//   - 500: infrastructure fault, nothing ran to completion
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req model.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := h.executions.Submit(r.Context(), req)
	if err != nil {
		h.writeExecuteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Success:       result.OK(),
		Output:        result.Stdout,
		Error:         nullable(result.Stderr),
		ExecutionTime: result.ExecutionTime,
		MemoryUsed:    result.MemoryUsed,
	})
}

// HandleLanguages lists every language the platform can execute.
func (h *ExecuteHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": h.executions.Languages(),
	})
}

// writeExecuteError keeps the execute wire shape even for request-level
// problems, with the HTTP status carrying the error class.
func (h *ExecuteHandler) writeExecuteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error during execution"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			message = appErr.Message
		case errors.Is(err, apperror.ErrUnsupportedLanguage):
			status = http.StatusUnprocessableEntity
			message = appErr.Message
		}
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("execution pipeline failed", slog.String("error", err.Error()))
	}

	writeJSON(w, status, executeResponse{
		Success: false,
		Error:   &message,
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
