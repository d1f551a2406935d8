package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/model"
)

// TranslationService exposes the dialect translator as a standalone
// operation, for editors that want to show learners both forms of their
// program without running anything.
type TranslationService struct {
	translator   Translator
	logger       *slog.Logger
	maxCodeBytes int
}

// NewTranslationService creates a TranslationService.
func NewTranslationService(translator Translator, maxCodeBytes int, logger *slog.Logger) *TranslationService {
	return &TranslationService{
		translator:   translator,
		logger:       logger,
		maxCodeBytes: maxCodeBytes,
	}
}

// Translate converts code between dialects. Request problems (missing code,
// bad direction) come back as validation errors; problems with the code
// itself come back inside the TranslationResult.
func (s *TranslationService) Translate(_ context.Context, code, direction string) (*model.TranslationResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > s.maxCodeBytes {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d bytes or less", s.maxCodeBytes))
	}

	dir := model.Direction(direction)
	if !dir.Valid() {
		return nil, apperror.ValidationFailed("direction",
			fmt.Sprintf("direction must be %q or %q", model.TeachingToHost, model.HostToTeaching))
	}

	result := s.translator.Translate(code, dir)

	s.logger.Info("translation finished",
		slog.String("direction", direction),
		slog.Bool("success", result.Success),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

// CheckSyntax validates code in one dialect without translating or running
// it. Findings are learner-facing strings; an empty slice means the code
// looks well-formed.
func (s *TranslationService) CheckSyntax(ctx context.Context, code, dialect string) ([]string, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > s.maxCodeBytes {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d bytes or less", s.maxCodeBytes))
	}
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	if dialect == "" {
		return nil, apperror.ValidationFailed("dialect", "dialect is required")
	}

	findings := s.translator.ValidateSyntax(ctx, code, dialect)

	s.logger.Debug("syntax check finished",
		slog.String("dialect", dialect),
		slog.Int("findings", len(findings)))

	return findings, nil
}
