package app

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/riskibarqy/roster-manager/internal/config"
	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/infrastructure/storage/cache"
	"github.com/riskibarqy/roster-manager/internal/infrastructure/storage/memory"
	"github.com/riskibarqy/roster-manager/internal/infrastructure/storage/postgres"
	"github.com/riskibarqy/roster-manager/internal/infrastructure/storage/sqlite"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// openProvider builds the roster provider for cfg.StorageDriver. The returned
// close func releases the underlying database, if any.
func openProvider(ctx context.Context, cfg config.Config, logger *logging.Logger) (roster.Provider, func() error, error) {
	var (
		provider roster.Provider
		closeFn  = func() error { return nil }
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		provider = memory.NewProvider()
	case config.StoragePostgres:
		dsn := cfg.PostgresDSN()
		db, err := otelsqlx.Open("postgres", dsn,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(postgresDatabaseName(dsn)),
			otelsql.WithAttributes(attribute.String("roster.storage_key", cfg.RosterStorageKey)),
			otelsql.WithQueryFormatter(traceQuery),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		otelsql.ReportDBStatsMetrics(db.DB)
		provider = postgres.NewProvider(db)
		closeFn = db.Close
	case config.StorageSQLite:
		sqliteProvider, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		provider = sqliteProvider
		closeFn = sqliteProvider.Close
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.CacheEnabled {
		provider = cache.NewProvider(provider, cfg.CacheTTL)
	}

	logger.Info("roster storage ready",
		"driver", cfg.StorageDriver,
		"key", cfg.RosterStorageKey,
		"cache_enabled", cfg.CacheEnabled,
	)
	return provider, closeFn, nil
}
