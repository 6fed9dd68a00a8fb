package main

import (
	"context"
	"log"

	"tender-backend/internal/bootstrap"
	"tender-backend/internal/config"
	"tender-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	// Jobs left active by a previous process would otherwise poll forever.
	if err := app.Analysis.RecoverStale(context.Background()); err != nil {
		log.Printf("recover stale jobs: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
