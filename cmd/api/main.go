package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"records-backend/internal/bootstrap"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	// Run the scheduler in-process when a provider is configured, so a
	// single binary serves uploads and drives jobs through the provider.
	if app.Scheduler != nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go app.Scheduler.Run(ctx)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
