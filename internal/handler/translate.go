package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nbekzat/codelab/internal/model"
)

// TranslationService is the slice of the translation layer this handler needs.
type TranslationService interface {
	Translate(ctx context.Context, code, direction string) (*model.TranslationResult, error)
	CheckSyntax(ctx context.Context, code, dialect string) ([]string, error)
}

// TranslateHandler handles dialect translation and syntax check requests.
type TranslateHandler struct {
	translations TranslationService
	logger       *slog.Logger
}

// NewTranslateHandler creates a new TranslateHandler.
func NewTranslateHandler(translations TranslationService, logger *slog.Logger) *TranslateHandler {
	return &TranslateHandler{
		translations: translations,
		logger:       logger,
	}
}

// HandleTranslate converts code between the teaching and host dialects.
// The response body is the TranslationResult itself: translation problems
// live inside it (success=false plus errors), while request problems map to
// HTTP error responses.
func (h *TranslateHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req model.TranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid translation request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := h.translations.Translate(r.Context(), req.SourceCode, string(req.Direction))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type validateRequest struct {
	Code    string `json:"code"`
	Dialect string `json:"dialect"`
}

type validateResponse struct {
	Dialect  string   `json:"dialect"`
	Findings []string `json:"findings"`
}

// HandleValidate checks code in one dialect for syntax problems without
// translating or executing it. Findings are learner-facing strings; an
// empty list means the code looks well-formed.
func (h *TranslateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid validation request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	findings, err := h.translations.CheckSyntax(r.Context(), req.Code, req.Dialect)
	if err != nil {
		writeError(w, err)
		return
	}
	if findings == nil {
		findings = []string{}
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Dialect:  req.Dialect,
		Findings: findings,
	})
}
