package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prepdeck/prepdeck/internal/api"
	"github.com/prepdeck/prepdeck/internal/config"
	"github.com/prepdeck/prepdeck/internal/db"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/repository/sqlite"
	"github.com/prepdeck/prepdeck/internal/services"
	"github.com/prepdeck/prepdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("PrepDeck Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("desired_retention=%.2f", cfg.DesiredRetention)
	log.Debug("max_cards_per_day=%d", cfg.MaxCardsPerDay)
	log.Debug("new_cards_per_day=%d", cfg.NewCardsPerDay)
	log.Debug("forecast_days=%d", cfg.ForecastDays)
	log.Debug("leech_threshold=%d", cfg.LeechThreshold)
	log.Debug("planner_worker_count=%d", cfg.PlannerWorkerCount)
	log.Debug("planner_queue_size=%d", cfg.PlannerQueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	cardRepo := sqlite.NewCardRepository(database.DB)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	historyRepo := sqlite.NewReviewHistoryRepository(database.DB)

	// Services
	defaults := services.SchedulerDefaults{
		DesiredRetention: cfg.DesiredRetention,
		LeechThreshold:   cfg.LeechThreshold,
		DisableFuzz:      cfg.DisableFuzz,
	}
	deckService := services.NewDeckService(deckRepo, cardRepo)
	reviewService := services.NewReviewService(cardRepo, deckRepo, historyRepo, defaults)
	studyService := services.NewStudyService(cardRepo, deckRepo, defaults, cfg.NewCardsPerDay, cfg.ShuffleSeed)
	plannerService := services.NewPlannerService(cardRepo, deckRepo, cfg.ForecastDays)

	// Background planner pool
	plannerPool := worker.NewPool(cfg.PlannerWorkerCount, cfg.PlannerQueueSize)

	srv := &api.Server{
		DB:          database.DB,
		Decks:       deckService,
		Reviews:     reviewService,
		Study:       studyService,
		Planner:     plannerService,
		PlannerPool: plannerPool,
	}

	ctx, cancel := context.WithCancel(context.Background())
	plannerPool.Start(ctx)

	// Smooth out due dates once at startup so a long-idle instance does not
	// greet the user with a mountain.
	plannerPool.Submit(&worker.BalanceAllJob{Planner: plannerService, Decks: deckService, Pool: plannerPool})

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	plannerPool.Stop()

	log.Info("===========================================")
	log.Info("PrepDeck Server Stopped")
	log.Info("===========================================")
}
