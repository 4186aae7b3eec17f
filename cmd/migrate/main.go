package main

import (
	"context"

	"github.com/keralahub/culturalhub/internal/infrastructure/db/postgres"
	"github.com/keralahub/culturalhub/internal/pkg/config"
	"github.com/keralahub/culturalhub/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Service: "culturalhub-migrate"})

	ctx := context.Background()

	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("migrations applied")
}
