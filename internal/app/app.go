// Package app wires configuration, storage, services, and the HTTP server
// together and owns the process lifecycle.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres"
	binderrepo "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/binder"
	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/bindercard"
	catalogrepo "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/catalog"
	"github.com/ferrisbrook/cardbinder-backend/internal/config"
	bindersvc "github.com/ferrisbrook/cardbinder-backend/internal/service/binder"
	catalogsvc "github.com/ferrisbrook/cardbinder-backend/internal/service/catalog"
	"github.com/ferrisbrook/cardbinder-backend/internal/snapshot"
	"github.com/ferrisbrook/cardbinder-backend/internal/transport/middleware"
	"github.com/ferrisbrook/cardbinder-backend/internal/transport/rest"
	"github.com/ferrisbrook/cardbinder-backend/migrations"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and handlers, and serves HTTP until the
// context is canceled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.UsingFallbackSecret() {
		logger.Warn("BINDER_SECRET_KEY is not set, using the built-in development key; snapshots are not confidential")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := runMigrations(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	// Storage layer.
	txm := postgres.NewTxManager(pool)
	cols := postgres.NewColumns(pool, logger)
	binders := binderrepo.New(pool)
	cards := catalogrepo.New(pool)
	entries := bindercard.New(pool, cols)

	// Snapshot codec.
	codec := snapshot.Disabled
	if cfg.Binder.SnapshotCache {
		codec = snapshot.New(cfg.Binder.SecretKey)
	}

	// Services.
	binderService := bindersvc.NewService(logger, binders, cards, entries, txm, codec)
	binderService.SetNotifier(&logNotifier{log: logger})
	catalogService := catalogsvc.NewService(logger, cards)

	// HTTP surface.
	mux := http.NewServeMux()

	rest.NewBinderHandler(logger, binderService).Register(mux)
	rest.NewCardHandler(logger, catalogService).Register(mux)

	health := rest.NewHealthHandler(pool, BuildVersion())
	mux.HandleFunc("GET /health", health.Ready)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(cfg.CORS),
		middleware.Account(cfg.Binder.DevAccountFallback),
		middleware.Logger(logger),
	)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// runMigrations applies the embedded goose migrations over a database/sql
// connection, which goose requires.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
