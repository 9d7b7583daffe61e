package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"courtside/api"
	"courtside/config"
	"courtside/database"
	"courtside/events"
	"courtside/metrics"
	"courtside/repository"
	"courtside/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting courtside server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, database.PoolSettings{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	metrics.RegisterEventRecorders(eventBus)
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	betService := service.NewBetService(uowFactory)
	judgingService := service.NewJudgingService(uowFactory, service.JudgingConfig{
		VotingWindow:    cfg.VotingWindow,
		ReputationBonus: cfg.ReputationBonus,
	})
	log.Println("Services initialized successfully")

	// Start the settlement sweeper
	stopSweeper := service.StartSettlementSweeper(ctx, judgingService, cfg.SweepInterval)

	// Start the ops server (metrics + health)
	opsSrv := metrics.StartOpsServer(cfg.OpsAddr, func(ctx context.Context) error {
		return db.Pool.Ping(ctx)
	})

	// Start the API server
	server := api.New(cfg, userService, betService, judgingService)
	httpSrv := server.ListenAndServe()

	errChan := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s in %s mode...", cfg.ListenAddr, cfg.Environment)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for context cancellation or a listener failure
	select {
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down ops server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
