// Package server provides the HTTP server and routing for the Jomo backend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/database"
	advisorhandlers "github.com/jomolabs/jomo/internal/modules/advisor/handlers"
	historyhandlers "github.com/jomolabs/jomo/internal/modules/history/handlers"
	projecthandlers "github.com/jomolabs/jomo/internal/modules/projects/handlers"
	scoringhandlers "github.com/jomolabs/jomo/internal/modules/scoring/handlers"
	settingshandlers "github.com/jomolabs/jomo/internal/modules/settings/handlers"
)

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	DB               *database.DB
	Port             int
	DevMode          bool
	ScoringHandlers  *scoringhandlers.Handlers
	ProjectHandlers  *projecthandlers.Handlers
	AdvisorHandlers  *advisorhandlers.Handlers
	HistoryHandlers  *historyhandlers.Handlers
	SettingsHandlers *settingshandlers.Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		db:     cfg.DB,
		cfg:    cfg,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Advisor calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	// The SPA is served from a different origin during development
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if devMode {
		s.router.Use(middleware.Logger)
	}
}

// setupRoutes mounts all module routes under /api
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		s.cfg.ScoringHandlers.RegisterRoutes(r)
		s.cfg.ProjectHandlers.RegisterRoutes(r)
		s.cfg.HistoryHandlers.RegisterRoutes(r)
		s.cfg.SettingsHandlers.RegisterRoutes(r)
		if s.cfg.AdvisorHandlers != nil {
			s.cfg.AdvisorHandlers.RegisterRoutes(r)
		}
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.QuickCheck(ctx); err != nil {
		s.log.Error().Err(err).Msg("Health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
