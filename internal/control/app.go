// Package control wires the application together: configuration, database,
// optional Redis, the API client, and the extraction pipeline.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/keapsync/internal/core/checkpoint"
	"github.com/vietddude/keapsync/internal/core/config"
	"github.com/vietddude/keapsync/internal/core/errlog"
	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/infra/rediscache"
	"github.com/vietddude/keapsync/internal/infra/storage/postgres"
	"github.com/vietddude/keapsync/internal/sync/loader"
	"github.com/vietddude/keapsync/internal/sync/pipeline"
	"github.com/vietddude/keapsync/internal/sync/reprocess"
	"github.com/vietddude/keapsync/internal/sync/retry"
)

// App is the assembled application.
type App struct {
	Pipeline    *pipeline.Pipeline
	Registry    *loader.Registry
	Runner      *loader.Runner
	Reprocessor *reprocess.Reprocessor
	Checkpoints *checkpoint.Store
	Ledger      *errlog.Ledger

	db            *postgres.DB
	cache         *rediscache.Cache
	metricsServer *http.Server
}

// Options tweak assembly beyond the config file.
type Options struct {
	// BatchSize overrides the configured page size when positive.
	BatchSize int
}

// NewApp builds the application from configuration: connects and migrates the
// database, connects Redis when configured, and wires the pipeline.
func NewApp(ctx context.Context, cfg *config.AppConfig, opts Options) (*App, error) {
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db.DB.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}

	var cache *rediscache.Cache
	if cfg.Redis.URL != "" {
		cache, err = rediscache.NewCache(cfg.Redis)
		if err != nil {
			// The cache is an optimization; run without it.
			slog.Warn("Redis unavailable, existence caching disabled", "error", err)
			cache = nil
		}
	}

	client, err := keap.NewClient(cfg.API.BaseURL, cfg.API.APIKey,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	if err != nil {
		_ = db.Close()
		_ = cache.Close()
		return nil, err
	}

	batchSize := cfg.Load.BatchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}

	checkpoints := checkpoint.NewStore(cfg.State.CheckpointFile)
	ledger := errlog.NewLedger(cfg.State.ErrorLogDir)
	policy := retry.NewPolicy(retry.Config{MaxRetries: cfg.Load.MaxRetries})

	deps := loader.Deps{
		Client:      client,
		Store:       postgres.NewStore(db),
		Cache:       cache,
		Retry:       policy,
		Ledger:      ledger,
		Checkpoints: checkpoints,
		BatchSize:   batchSize,
	}
	registry := loader.NewRegistry(deps)
	runner := loader.NewRunner(deps)
	reprocessor := reprocess.New(ledger, registry, runner)

	app := &App{
		Pipeline:    pipeline.New(registry, runner, reprocessor),
		Registry:    registry,
		Runner:      runner,
		Reprocessor: reprocessor,
		Checkpoints: checkpoints,
		Ledger:      ledger,
		db:          db,
		cache:       cache,
	}

	if cfg.Metrics.Addr != "" {
		app.startMetrics(cfg.Metrics.Addr)
	}

	return app, nil
}

func (a *App) startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()
}

// Close releases connections.
func (a *App) Close() error {
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metricsServer.Shutdown(shutdownCtx)
	}
	_ = a.cache.Close()
	return a.db.Close()
}
