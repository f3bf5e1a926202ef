// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides:
// - Which URL patterns map to which handler functions
// - Which routes need an authenticated caller
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → store (sqlite or postgres) → TokenService, PasswordService → Metrics
//
// and hands them to New, which builds:
//
//	AuthService, DirectoryService → AuthHandler, UserHandler → routes
//
// All wiring happens in New/setupRoutes (the "composition root").
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/handler"
	"github.com/sakif/user-auth/internal/metrics"
	"github.com/sakif/user-auth/internal/middleware"
	"github.com/sakif/user-auth/internal/repository"
	"github.com/sakif/user-auth/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port        int
	ErrorPolicy handler.ErrorPolicy
}

// Store is the directory store the server owns. Both the SQLite and the
// Postgres implementations satisfy it.
type Store interface {
	repository.UserRepository
	Ping(ctx context.Context) error
	Close() error
}

// Deps are the collaborators built in main.
type Deps struct {
	Store     Store
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
	Metrics   *metrics.Metrics // optional
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. It is closed in Start once in-flight requests
// have drained, or by Close when the server never started.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	deps   Deps
}

// New wires services, handlers and routes around deps.
func New(cfg Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Tokens == nil || deps.Passwords == nil {
		return nil, errors.New("server: store, token service and password service are required")
	}
	if cfg.ErrorPolicy == "" {
		cfg.ErrorPolicy = handler.PolicyClassified
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST /api/user/register  → create account, returns a token
// POST /api/user/login     → exchange credentials for a token
// GET  /api/user/current   → caller's profile              [auth]
// GET  /api/user/all       → everyone else, ?searchText=   [auth]
// GET  /healthz            → store reachability
// GET  /metrics            → Prometheus exposition
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID assigns an id to each request (picked up by the logger)
// 2. RealIP extracts the client IP from proxy headers
// 3. Recoverer turns panics into 500s
// 4. Logger logs each request and records HTTP metrics
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger, s.deps.Metrics))

	authService := service.NewAuthService(s.deps.Store, s.deps.Tokens, s.deps.Passwords, s.deps.Metrics, s.logger)
	directoryService := service.NewDirectoryService(s.deps.Store, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.ErrorPolicy, s.logger)
	userHandler := handler.NewUserHandler(directoryService, s.config.ErrorPolicy, s.logger)

	s.router.Get("/healthz", handler.HandleHealth(s.deps.Store, s.logger))
	s.router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	s.router.Route("/api/user", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		// Protected routes: RequireAuth resolves the bearer token to a
		// stored user and puts it in the request context.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.deps.Tokens, s.deps.Store, s.logger))
			r.Get("/current", userHandler.HandleCurrent)
			r.Get("/all", userHandler.HandleList)
		})
	})
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Use it when Start is never called.
func (s *Server) Close() error {
	return s.deps.Store.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store
func (s *Server) Start() error {
	defer func() {
		if err := s.deps.Store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("error_policy", string(s.config.ErrorPolicy)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
