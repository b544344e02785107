// Package main is the entry point for the Jomo investment dashboard backend.
//
// The backend has one piece of real logic, the Master Scoring Model:
// a deterministic, stateless computation turning seven raw metrics and the
// user's factor weights into a 0-100 score with a risk-adjusted grade.
// Everything else is plumbing around it: project persistence (sqlite), the
// Gemini-backed "Jomo" advisor persona, and the HTTP API the dashboard calls
// on every metric edit or weight-slider change.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jomolabs/jomo/internal/config"
	"github.com/jomolabs/jomo/internal/database"
	"github.com/jomolabs/jomo/internal/modules/advisor"
	advisorhandlers "github.com/jomolabs/jomo/internal/modules/advisor/handlers"
	"github.com/jomolabs/jomo/internal/modules/history"
	historyhandlers "github.com/jomolabs/jomo/internal/modules/history/handlers"
	"github.com/jomolabs/jomo/internal/modules/projects"
	projecthandlers "github.com/jomolabs/jomo/internal/modules/projects/handlers"
	scoringhandlers "github.com/jomolabs/jomo/internal/modules/scoring/handlers"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
	"github.com/jomolabs/jomo/internal/modules/scoring/scorers"
	"github.com/jomolabs/jomo/internal/modules/settings"
	settingshandlers "github.com/jomolabs/jomo/internal/modules/settings/handlers"
	"github.com/jomolabs/jomo/internal/scheduler"
	"github.com/jomolabs/jomo/internal/server"
	"github.com/jomolabs/jomo/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Jomo backend")

	// Single-database architecture: projects, settings and score history all
	// live in jomo.db
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "jomo.db"),
		Name: "jomo",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	// Repositories own their table migrations
	settingsRepo := settings.NewRepository(db, log)
	projectsRepo := projects.NewRepository(db, log)
	historyRepo := history.NewRepository(db, log)
	for name, migrate := range map[string]func() error{
		"settings": settingsRepo.Migrate,
		"projects": projectsRepo.Migrate,
		"history":  historyRepo.Migrate,
	} {
		if err := migrate(); err != nil {
			log.Fatal().Err(err).Str("table", name).Msg("Migration failed")
		}
	}

	// Settings DB values (API key rotated via the UI) beat environment ones
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to update config from settings DB, using environment variables")
	}

	// The rubric is injected data: a YAML override file can swap breakpoint
	// tables and risk bounds without touching engine logic
	activeRubric := rubric.Default()
	if cfg.RubricPath != "" {
		loaded, err := rubric.Load(cfg.RubricPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.RubricPath).Msg("Failed to load rubric")
		}
		activeRubric = loaded
	}
	log.Info().Str("version", activeRubric.Version).Msg("Scoring rubric loaded")

	engine := scorers.NewScoreEngine(activeRubric)

	// The advisor is optional: without an API key the scoring and project
	// surfaces still work, extraction just reports unavailable
	geminiClient := advisor.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if !geminiClient.Configured() {
		log.Warn().Msg("GOOGLE_API_KEY not configured - advisor will degrade to fallbacks")
	}
	advisorSvc := advisor.NewService(geminiClient, log)

	srv := server.New(server.Config{
		Log:              log,
		DB:               db,
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
		ScoringHandlers:  scoringhandlers.NewHandlers(engine, historyRepo, log),
		ProjectHandlers:  projecthandlers.NewHandlers(projectsRepo, log),
		AdvisorHandlers:  advisorhandlers.NewHandlers(advisorSvc, log),
		HistoryHandlers:  historyhandlers.NewHandlers(historyRepo, log),
		SettingsHandlers: settingshandlers.NewHandlers(settingsRepo, log),
	})

	// Nightly WAL truncation and snapshot pruning
	sched := scheduler.New(log)
	if err := sched.AddJob("30 3 * * *", scheduler.NewMaintenanceJob(db, historyRepo, log)); err != nil {
		log.Error().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
