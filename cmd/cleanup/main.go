// Command cleanup purges expired password-reset tokens and stale
// rate-limit records, then exits. It is meant to be run by an external
// scheduler (e.g. a daily cron); it holds no schedule of its own and is
// safe to run at any cadence alongside live traffic.
package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"tweeter/backend/internal/credentials"
	"tweeter/backend/internal/database"
	"tweeter/backend/pkg/config"
	applog "tweeter/backend/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DSN(), cfg.Environment)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	job := credentials.NewCleanupJob(db, logger)
	if err := job.Run(context.Background()); err != nil {
		logger.Error("Cleanup job failed", zap.Error(err))
		os.Exit(1)
	}
}
