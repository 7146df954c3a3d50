// Package bootstrap handles application initialization and lifecycle
// management for the link-tracker service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/blix057/afdver-Bot/internal/logger"
)

// Start initializes and runs the link-tracker application.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Setup database
	db, err := SetupDatabase(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	// Phase 3: Setup the admission limiter over its backing store
	limiter, closeStore, err := SetupLimiter(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up rate limiter: %w", err)
	}
	defer closeStore()

	// Phase 4: Assemble and run the HTTP server. The usage recorder drains
	// on the way out so pending counters reach the database.
	server, rec := SetupHTTPServer(cfg, db, limiter, log)
	rec.Start()
	defer rec.Close()

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
