// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "wire dependencies and start")
//
// DEPENDENCY FLOW:
// main.go is the composition root. It builds the session store, the translator,
// the security validator, the sandbox backend, the services, and finally the
// handlers — then hands the finished handlers to New. The server never opens
// databases or talks to Docker itself; it only owns HTTP concerns (routing,
// timeouts, graceful shutdown). That keeps resource lifetimes in one place:
// whoever opens a connection in main is the one who defers its Close.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nbekzat/codelab/internal/handler"
	"github.com/nbekzat/codelab/internal/middleware"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
type Config struct {
	Port int

	// WriteTimeout bounds the whole response, handler included. A code
	// submission legitimately holds the connection for the full compile and
	// execution budget, so main computes this from those budgets plus slack.
	// Zero means a 60 second default.
	WriteTimeout time.Duration
}

// Handlers bundles the HTTP handlers the router mounts. Grouping them in a
// struct keeps New's signature stable when a new handler is added.
type Handlers struct {
	Execute   *handler.ExecuteHandler
	Translate *handler.TranslateHandler
	Sessions  *handler.SessionHandler
}

// Server represents the HTTP server and its routing table.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New creates a Server and mounts all middleware and routes.
func New(cfg Config, h Handlers, logger *slog.Logger) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(h)
	return s
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST /execute           → run submitted code, return the outcome (JSON)
// POST /translate         → translate code between the two dialects (JSON)
// POST /validate          → syntax-check code in one dialect (JSON)
// GET  /languages         → list runnable languages (JSON)
// GET  /sessions/{userID} → per-user execution statistics (JSON)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Logger — logs each request with timing info
// 4. Recoverer — catches panics and returns 500 instead of crashing
//
// Recoverer sits inside Logger on purpose: when a handler panics, Recoverer
// writes the 500 and returns normally, so the Logger above it still records
// the request with its real status code.
func (s *Server) setupRoutes(h Handlers) {
	// === Global Middleware ===
	// These run on EVERY request, in order
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// === API Routes ===
	// The routes live at the root rather than under /api because the gateway
	// fronts exactly one thing — there is no page layer to share the mux with.
	s.router.Post("/execute", h.Execute.HandleExecute)
	s.router.Get("/languages", h.Execute.HandleLanguages)

	s.router.Post("/translate", h.Translate.HandleTranslate)
	s.router.Post("/validate", h.Translate.HandleValidate)

	s.router.Get("/sessions/{userID}", h.Sessions.HandleGet)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
//
// In-flight here can mean "a student's program is mid-run in the sandbox",
// which is exactly the request we least want to cut off — the run would
// finish but the learner would never see the output.
func (s *Server) Start() error {
	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
