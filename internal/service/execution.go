// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// In a well-structured Go web app, code is organised into three layers:
//
//   Handler (HTTP layer)     → parses requests, writes responses
//   Service (Business layer) → validates, enforces rules, orchestrates
//   Repository (Data layer)  → reads/writes to the database
//
// The execution pipeline adds a few more players below the service layer —
// the dialect translator, the security validator, the sandbox executor —
// but the shape stays the same: the service decides the ORDER in which they
// run and what each outcome means, while every component below it knows
// only its own narrow job.
//
// DEPENDENCY INJECTION:
// ExecutionService takes its collaborators as interfaces, not concrete
// types. Tests pass hand-written fakes; main.go passes the real translator,
// validator, registry and whichever sandbox backend the config selects.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nbekzat/codelab/internal/apperror"
	"github.com/nbekzat/codelab/internal/executor"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/repository"
	"github.com/nbekzat/codelab/internal/runner"
	"github.com/nbekzat/codelab/internal/security"
)

// Translator converts between the teaching and host dialects.
type Translator interface {
	Translate(source string, dir model.Direction) *model.TranslationResult
	ValidateSyntax(ctx context.Context, code, dialect string) []string
}

// SecurityValidator decides whether submitted code may run at all.
type SecurityValidator interface {
	Validate(code, language string) security.Decision
}

// LanguageCatalog answers which languages the sandbox can run.
type LanguageCatalog interface {
	Supported(language string) bool
	List() []runner.LanguageInfo
}

// ExecutionService orchestrates one submission through the whole pipeline:
// request checks, language lookup, the security gate, translation for
// teaching-dialect code, the sandbox, and finally session accounting.
type ExecutionService struct {
	translator Translator
	validator  SecurityValidator
	languages  LanguageCatalog
	sandbox    executor.Executor
	sessions   repository.SessionRepository
	logger     *slog.Logger

	maxCodeBytes int

	// Per-user stat updates are serialized. The stores increment
	// atomically on their own, but a coarse per-user lock also keeps the
	// counters exact against any future store that cannot.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewExecutionService creates an ExecutionService with all collaborators.
func NewExecutionService(
	translator Translator,
	validator SecurityValidator,
	languages LanguageCatalog,
	sandbox executor.Executor,
	sessions repository.SessionRepository,
	maxCodeBytes int,
	logger *slog.Logger,
) *ExecutionService {
	return &ExecutionService{
		translator:   translator,
		validator:    validator,
		languages:    languages,
		sandbox:      sandbox,
		sessions:     sessions,
		logger:       logger,
		maxCodeBytes: maxCodeBytes,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Submit runs one piece of code through the pipeline and returns its
// terminal result.
//
// THE PIPELINE ORDER MATTERS:
//
//  1. Request checks — empty or oversized code never costs a sandbox slot.
//  2. Language gate — unknown languages fail before any artifact exists.
//  3. Security gate — refused code never reaches the translator or sandbox.
//  4. Translation — teaching-dialect code becomes host-dialect code.
//  5. Sandbox — the only step that runs the learner's program.
//  6. Accounting — exactly one Record call per terminal result.
//
// A nil error means result is terminal (success, failure, timeout, security
// refusal or compile error). A non-nil error means infrastructure trouble:
// nothing ran to completion and nothing was recorded.
func (s *ExecutionService) Submit(ctx context.Context, req model.ExecutionRequest) (*model.ExecutionResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.Code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(req.Code) > s.maxCodeBytes {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d bytes or less", s.maxCodeBytes))
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}

	// Teaching-dialect code ultimately runs on the host interpreter, so its
	// availability is what decides whether eduscript is executable here.
	runLanguage := language
	if language == model.LanguageEduScript {
		runLanguage = model.LanguagePython
	}
	if !s.languages.Supported(runLanguage) {
		return nil, apperror.UnsupportedLanguage(language)
	}

	log := s.logger.With(
		slog.String("executionID", uuid.NewString()),
		slog.String("language", language),
		slog.String("userID", req.UserID),
	)

	decision := s.validator.Validate(req.Code, language)
	if !decision.Allowed {
		log.Warn("execution refused by security validator",
			slog.String("reason", decision.Reason))
		result := &model.ExecutionResult{
			Status:   model.StatusSecurityViolation,
			Stderr:   decision.Reason,
			ExitCode: -1,
		}
		s.record(ctx, log, req.UserID, result)
		return result, nil
	}

	code := req.Code
	if language == model.LanguageEduScript {
		translation := s.translator.Translate(req.Code, model.TeachingToHost)
		if !translation.Success {
			log.Warn("translation failed",
				slog.Int("errors", len(translation.Errors)))
			result := &model.ExecutionResult{
				Status:   model.StatusFailure,
				Stderr:   "translation failed: " + strings.Join(translation.Errors, "; "),
				ExitCode: -1,
			}
			s.record(ctx, log, req.UserID, result)
			return result, nil
		}
		code = translation.TranslatedCode
		log.Debug("teaching code translated",
			slog.Int("warnings", len(translation.Warnings)))
	}

	result, err := s.sandbox.Execute(ctx, executor.Request{
		Code:     code,
		Language: runLanguage,
	})
	if err != nil {
		log.Error("sandbox execution failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("executing %s code: %w", language, err)
	}

	// The result carries the sandbox-measured time; elapsed covers the whole
	// pipeline including translation and the security scan.
	log.Info("execution finished",
		slog.String("status", string(result.Status)),
		slog.Int("exitCode", result.ExitCode),
		slog.Float64("sandboxSeconds", result.ExecutionTime),
		slog.Duration("elapsed", time.Since(start)))

	s.record(ctx, log, req.UserID, result)
	return result, nil
}

// Languages lists what the platform can execute: the sandbox languages plus
// the teaching dialect, which is available whenever its translation target is.
func (s *ExecutionService) Languages() []runner.LanguageInfo {
	infos := s.languages.List()
	if s.languages.Supported(model.LanguagePython) {
		infos = append([]runner.LanguageInfo{{
			ID:   model.LanguageEduScript,
			Name: "EduScript",
		}}, infos...)
	}
	return infos
}

// record persists one terminal result into the user's session counters.
// Anonymous submissions (no user id) keep no stats. Storage errors are
// logged, never surfaced: the learner already has their result and a
// counter hiccup must not turn it into a failure.
func (s *ExecutionService) record(ctx context.Context, log *slog.Logger, userID string, result *model.ExecutionResult) {
	if userID == "" {
		return
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.sessions.Record(ctx, userID, result.OK()); err != nil {
		log.Error("failed to record session stats", slog.String("error", err.Error()))
	}
}

func (s *ExecutionService) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
