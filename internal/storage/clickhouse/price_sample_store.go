package clickhouse

import (
	"context"
	"fmt"
	"time"

	"trading-journal/internal/domain"
	"trading-journal/internal/storage"
)

// PriceSampleStore implements storage.PriceSampleStore using ClickHouse.
type PriceSampleStore struct {
	conn *Conn
}

// NewPriceSampleStore creates a new PriceSampleStore.
func NewPriceSampleStore(conn *Conn) *PriceSampleStore {
	return &PriceSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate (trade_id, timestamp_ms).
func (s *PriceSampleStore) InsertBulk(ctx context.Context, samples []*domain.PriceSample) (err error) {
	if len(samples) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("price_sample_insert_bulk", start, err) }(time.Now())

	// Check for intra-batch duplicates
	type key struct {
		tradeID     string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(samples))
	for _, p := range samples {
		if p == nil || p.TradeID == "" || !p.Price.IsPositive() {
			return storage.ErrInvalidInput
		}
		k := key{p.TradeID, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range samples {
		exists, err := s.exists(ctx, p.TradeID, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_samples (trade_id, timestamp_ms, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		if err := batch.Append(p.TradeID, p.TimestampMs, p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTradeID retrieves all samples for a trade, ordered by timestamp ASC.
func (s *PriceSampleStore) GetByTradeID(ctx context.Context, tradeID string) (_ []*domain.PriceSample, err error) {
	defer func(start time.Time) { observe("price_sample_get", start, err) }(time.Now())

	query := `
		SELECT trade_id, timestamp_ms, price
		FROM price_samples FINAL
		WHERE trade_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("query by trade id: %w", err)
	}
	defer rows.Close()

	return scanPriceSamples(rows)
}

// exists checks if a sample with the given key exists.
func (s *PriceSampleStore) exists(ctx context.Context, tradeID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM price_samples
		WHERE trade_id = ? AND timestamp_ms = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, tradeID, timestampMs).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPriceSamples scans multiple rows.
func scanPriceSamples(rows chRows) ([]*domain.PriceSample, error) {
	var samples []*domain.PriceSample

	for rows.Next() {
		var p domain.PriceSample
		if err := rows.Scan(&p.TradeID, &p.TimestampMs, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price sample row: %w", err)
		}
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price sample rows: %w", err)
	}

	return samples, nil
}
