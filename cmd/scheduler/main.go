package main

// Standalone scheduler daemon. Runs the submit and fetch tasks against the
// shared database without serving HTTP, for deployments that separate the
// API from job processing. Safe to run alongside the API's in-process
// scheduler: claims are atomic, so racing instances never double-submit.

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"records-backend/internal/bootstrap"
	"records-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.Provider == "none" {
		log.Fatal("ANALYSIS_PROVIDER must be configured")
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.Scheduler == nil {
		log.Fatal("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("scheduler started submit_interval=%s fetch_interval=%s", cfg.SubmitInterval, cfg.FetchInterval)
	app.Scheduler.Run(ctx)
	log.Printf("scheduler stopped")
}
