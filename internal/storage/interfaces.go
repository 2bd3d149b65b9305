package storage

import (
	"context"

	"trading-journal/internal/domain"
)

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetByUser retrieves all trades for a user, ordered by created_at ASC, trade_id ASC.
	GetByUser(ctx context.Context, userID string) ([]*domain.Trade, error)

	// ListUserIDs returns the distinct user IDs that own at least one trade, sorted ASC.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// PriceSampleStore provides access to price_samples storage.
type PriceSampleStore interface {
	// InsertBulk adds multiple samples atomically.
	// Returns ErrDuplicateKey if any (trade_id, timestamp_ms) exists.
	InsertBulk(ctx context.Context, samples []*domain.PriceSample) error

	// GetByTradeID retrieves all samples for a trade, ordered by timestamp ASC.
	GetByTradeID(ctx context.Context, tradeID string) ([]*domain.PriceSample, error)
}

// MetricSnapshotStore provides access to metric_snapshots storage.
type MetricSnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
	Insert(ctx context.Context, s *domain.MetricSnapshot) error

	// GetLatest retrieves the most recent snapshot for a user. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, userID string) (*domain.MetricSnapshot, error)

	// GetByUser retrieves all snapshots for a user, ordered by computed_at ASC.
	GetByUser(ctx context.Context, userID string) ([]*domain.MetricSnapshot, error)
}
