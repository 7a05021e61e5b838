package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fairdash/internal/fairness/metrics"
	"fairdash/internal/fairness/ports"
	"fairdash/internal/fairness/source"
	"fairdash/internal/fairness/store/cache"
	"fairdash/internal/fairness/store/memory"
	"fairdash/internal/fairness/store/postgres"
	"fairdash/internal/fairness/store/sqlite"
	"fairdash/internal/platform/config"
	"fairdash/internal/platform/redis"
)

// openEngine builds the configured query engine over the dataset.
func openEngine(ctx context.Context, cfg config.Dataset, logger *slog.Logger) (ports.Engine, error) {
	switch cfg.Engine {
	case config.EnginePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s engine", cfg.Engine)
		}
		return postgres.Open(ctx, cfg.DatabaseURL, cfg.Table)
	case config.EngineSQLite:
		if isSQLiteFile(cfg.Path) {
			return sqlite.OpenFile(ctx, cfg.Path, cfg.Table)
		}
		rows, err := source.Load(ctx, cfg.Path, source.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "dataset loaded", "path", cfg.Path, "rows", len(rows))
		return sqlite.Open(ctx, cfg.Table, rows)
	case config.EngineMemory:
		rows, err := source.Load(ctx, cfg.Path, source.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "dataset loaded", "path", cfg.Path, "rows", len(rows))
		return memory.New(rows), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// withCache puts the Redis result cache in front of engine when Redis is
// configured.
func withCache(engine ports.Engine, client *redis.Client, ttl, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) ports.Engine {
	if client == nil {
		return engine
	}
	return cache.New(engine, client,
		cache.WithTTL(ttl),
		cache.WithQueryTimeout(timeout),
		cache.WithLogger(logger),
		cache.WithMetrics(m),
	)
}

func isSQLiteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return !strings.HasPrefix(path, "s3://")
	default:
		return false
	}
}
