package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"drawhouse/api"
	"drawhouse/application"
	"drawhouse/config"
	"drawhouse/database"
	"drawhouse/domain/entities"
	"drawhouse/domain/events"
	"drawhouse/domain/services"
	"drawhouse/infrastructure"
	"drawhouse/repository"
	"drawhouse/scheduler"
)

// Run initializes and starts the settlement engine
func Run(ctx context.Context) error {
	log.Info("Starting drawhouse settlement engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Resolve game parameters for the configured games
	gameParams, err := resolveGameParams(cfg.Games)
	if err != nil {
		return err
	}

	timings := services.DrawTimings{
		CommitSlackSlots:  cfg.CommitSlackSlots,
		RevealWindowSlots: cfg.RevealWindowSlots,
		CancelTimeout:     cfg.CancelTimeout,
	}
	orchestrator := application.NewOrchestrator(uowFactory, gameParams, timings)

	// Bootstrap ledgers for any game missing one
	if err := orchestrator.EnsureLedgers(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap ledgers: %w", err)
	}

	// Randomness beacon
	beacon := infrastructure.NewBeaconClient(cfg.BeaconURL)

	// Draw scheduler
	drawScheduler := scheduler.New(orchestrator, beacon, cfg.PollInterval)
	stopScheduler, err := drawScheduler.Start(cfg.DrawSchedule)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer stopScheduler()

	// API server
	server := api.NewServer(cfg.ListenAddr, orchestrator, beacon)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Engine is running")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
	}

	// Drain in-flight requests before closing the database
	log.Info("Shutting down engine...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down API server")
	}

	log.Info("Engine stopped")
	return nil
}

// resolveGameParams maps configured game names to their parameter sets
func resolveGameParams(games []string) ([]*entities.GameParams, error) {
	params := make([]*entities.GameParams, 0, len(games))
	for _, game := range games {
		var p *entities.GameParams
		switch game {
		case "classic":
			p = entities.DefaultClassicParams()
		case "express":
			p = entities.DefaultExpressParams()
		default:
			return nil, fmt.Errorf("unknown game %q in configuration", game)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid parameters for game %s: %w", game, err)
		}
		params = append(params, p)
	}
	return params, nil
}
