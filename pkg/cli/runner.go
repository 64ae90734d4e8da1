package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vingov/hudi/internal/config"
	"github.com/vingov/hudi/internal/domain"
	"github.com/vingov/hudi/internal/engine/duckdb"
	"github.com/vingov/hudi/internal/storage"
	hudisync "github.com/vingov/hudi/internal/sync"
)

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// syncAll opens the engine, reconciles the shared objects (target schema,
// storage secret), and syncs every configured table once. Tables run
// concurrently with each other; two processes must never target the same
// table at the same time.
func syncAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("duckdb", cfg.EngineDSN)
	if err != nil {
		return fmt.Errorf("open engine %q: %w", cfg.EngineDSN, err)
	}
	defer db.Close() //nolint:errcheck

	client := duckdb.NewClient(db, cfg.TargetCatalog, cfg.TargetSchema, logger)
	if err := client.EnsureSchema(ctx); err != nil {
		return err
	}
	if integ := cfg.StorageIntegration; integ != nil {
		switch integ.Type {
		case config.IntegrationS3:
			err = client.EnsureS3Secret(ctx, integ.Name, "", integ.KeyID, integ.Secret, integ.Endpoint, integ.Region)
		case config.IntegrationGCS:
			err = client.EnsureGCSSecret(ctx, integ.Name, "", integ.KeyFilePath)
		}
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tc := range cfg.Tables {
		g.Go(func() error {
			store, err := storage.Open(gctx, tc.BasePath, cfg.StorageOptions())
			if err != nil {
				return domain.NewSyncError(tc.Name, err)
			}
			return hudisync.New(store, client, logger).Sync(gctx, cfg.Table(tc))
		})
	}
	return g.Wait()
}

// runScheduled syncs immediately, then on the configured cron schedule
// until the context is cancelled. A tick that fires while the previous
// sync is still running is skipped rather than overlapped.
func runScheduled(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(cfg.Schedule, func() {
		if err := syncAll(ctx, cfg, logger); err != nil {
			logger.Error("scheduled sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	logger.Info("starting scheduled sync", "schedule", cfg.Schedule, "tables", len(cfg.Tables))
	if err := syncAll(ctx, cfg, logger); err != nil {
		logger.Error("initial sync failed", "error", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("scheduled sync stopped")
	return nil
}
