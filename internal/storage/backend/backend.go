// Package backend opens the store set selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trading-journal/internal/config"
	"trading-journal/internal/storage"
	chstore "trading-journal/internal/storage/clickhouse"
	"trading-journal/internal/storage/memory"
	"trading-journal/internal/storage/migrations"
	pgstore "trading-journal/internal/storage/postgres"
)

// Stores is one storage backend.
type Stores struct {
	Trades    storage.TradeStore
	Samples   storage.PriceSampleStore
	Snapshots storage.MetricSnapshotStore

	// Ping checks that backing databases are reachable.
	Ping func(ctx context.Context) error

	close func()
}

// Close releases database connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Memory returns empty in-memory stores.
func Memory() *Stores {
	return &Stores{
		Trades:    memory.NewTradeStore(),
		Samples:   memory.NewPriceSampleStore(),
		Snapshots: memory.NewMetricSnapshotStore(),
		Ping:      func(context.Context) error { return nil },
	}
}

// Open creates the stores for cfg.Backend.
// The database backend keeps trades in Postgres and the time series in ClickHouse.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*Stores, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Info("using in-memory storage")
		return Memory(), nil
	case config.BackendDatabase:
		return openDatabase(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func openDatabase(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*Stores, error) {
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	var conn *chstore.Conn
	if cfg.Migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		log.Info("migrations applied")
	} else {
		conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
	}

	log.Info("connected to postgres and clickhouse")

	return &Stores{
		Trades:    pgstore.NewTradeStore(pool),
		Samples:   chstore.NewPriceSampleStore(conn),
		Snapshots: chstore.NewMetricSnapshotStore(conn),
		Ping: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := conn.Ping(ctx); err != nil {
				return fmt.Errorf("clickhouse: %w", err)
			}
			return nil
		},
		close: func() {
			if err := conn.Close(); err != nil {
				log.Warn("close clickhouse", zap.Error(err))
			}
			pool.Close()
		},
	}, nil
}
