// Command seeder populates the card catalog with a deterministic demo set.
// It is intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--min-count  seed only until the catalog holds this many cards (default 120)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres"
	catalogrepo "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/catalog"
	"github.com/ferrisbrook/cardbinder-backend/internal/app"
	"github.com/ferrisbrook/cardbinder-backend/internal/app/seeder"
	"github.com/ferrisbrook/cardbinder-backend/internal/config"
)

// Compile-time interface assertion.
var _ seeder.CatalogBulkRepo = (*catalogrepo.Repo)(nil)

func main() {
	minCountFlag := flag.Int("min-count", seeder.DefaultMinCount, "seed until the catalog holds this many cards")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := catalogrepo.New(pool)

	if err := seeder.New(logger, repo).Run(ctx, *minCountFlag); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
