package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-journal/internal/domain"
	"trading-journal/internal/storage"
)

// PriceSampleStore is an in-memory implementation of storage.PriceSampleStore.
type PriceSampleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceSample // keyed by (trade_id, timestamp_ms)
}

// NewPriceSampleStore creates a new in-memory price sample store.
func NewPriceSampleStore() *PriceSampleStore {
	return &PriceSampleStore{
		data: make(map[string]*domain.PriceSample),
	}
}

// sampleKey generates a unique key for a price sample.
func sampleKey(tradeID string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", tradeID, timestampMs)
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate.
func (s *PriceSampleStore) InsertBulk(_ context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(samples))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range samples {
		if p == nil || p.TradeID == "" || !p.Price.IsPositive() {
			return storage.ErrInvalidInput
		}
		key := sampleKey(p.TradeID, p.TimestampMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range samples {
		sampleCopy := *p
		s.data[sampleKey(p.TradeID, p.TimestampMs)] = &sampleCopy
	}

	return nil
}

// GetByTradeID retrieves all samples for a trade, ordered by timestamp ASC.
func (s *PriceSampleStore) GetByTradeID(_ context.Context, tradeID string) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSample
	for _, p := range s.data {
		if p.TradeID == tradeID {
			sampleCopy := *p
			result = append(result, &sampleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)
