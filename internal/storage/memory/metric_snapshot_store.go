package memory

import (
	"context"
	"sort"
	"sync"

	"trading-journal/internal/domain"
	"trading-journal/internal/storage"
)

// MetricSnapshotStore is an in-memory implementation of storage.MetricSnapshotStore.
type MetricSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MetricSnapshot // keyed by snapshot_id
}

// NewMetricSnapshotStore creates a new in-memory metric snapshot store.
func NewMetricSnapshotStore() *MetricSnapshotStore {
	return &MetricSnapshotStore{
		data: make(map[string]*domain.MetricSnapshot),
	}
}

func cloneSnapshot(s *domain.MetricSnapshot) *domain.MetricSnapshot {
	c := *s
	if s.TreynorRatio != nil {
		v := *s.TreynorRatio
		c.TreynorRatio = &v
	}
	if s.JensensAlpha != nil {
		v := *s.JensensAlpha
		c.JensensAlpha = &v
	}
	return &c
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *MetricSnapshotStore) Insert(_ context.Context, snap *domain.MetricSnapshot) error {
	if snap == nil || snap.SnapshotID == "" || snap.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.SnapshotID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[snap.SnapshotID] = cloneSnapshot(snap)
	return nil
}

// GetLatest retrieves the most recent snapshot for a user. Returns ErrNotFound if none.
func (s *MetricSnapshotStore) GetLatest(ctx context.Context, userID string) (*domain.MetricSnapshot, error) {
	all, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, storage.ErrNotFound
	}
	return all[len(all)-1], nil
}

// GetByUser retrieves all snapshots for a user, ordered by computed_at ASC.
func (s *MetricSnapshotStore) GetByUser(_ context.Context, userID string) ([]*domain.MetricSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MetricSnapshot
	for _, snap := range s.data {
		if snap.UserID == userID {
			result = append(result, cloneSnapshot(snap))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ComputedAtMs != result[j].ComputedAtMs {
			return result[i].ComputedAtMs < result[j].ComputedAtMs
		}
		return result[i].SnapshotID < result[j].SnapshotID
	})

	return result, nil
}

var _ storage.MetricSnapshotStore = (*MetricSnapshotStore)(nil)
