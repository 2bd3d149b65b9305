package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-journal/internal/domain"
	"trading-journal/internal/idhash"
	"trading-journal/internal/lookup"
	"trading-journal/internal/observability"
	"trading-journal/internal/storage"
)

// Errors returned by the Aggregator.
var (
	// ErrNoTrades is returned when a user has no trades to snapshot.
	ErrNoTrades = errors.New("no trades available for aggregation")

	// ErrInsufficientData is returned when a user has trades but none are closed.
	ErrInsufficientData = errors.New("insufficient data: no closed trades")
)

// UserMetrics is the result of a store-backed computation for one user.
type UserMetrics struct {
	UserID   string
	Metrics  *domain.AllMetrics
	Trades   []*domain.Trade // valid trades the metrics were computed over
	Rejected []Rejection
}

// Aggregator loads a user's trades from storage and runs the engine over them.
// The user is always passed explicitly; the aggregator holds no request state.
type Aggregator struct {
	tradeStore    storage.TradeStore
	sampleStore   storage.PriceSampleStore
	snapshotStore storage.MetricSnapshotStore
	log           *zap.Logger
}

// NewAggregator creates a new metrics aggregator.
// sampleStore and snapshotStore may be nil when excursion or snapshot
// operations are not used.
func NewAggregator(tradeStore storage.TradeStore, sampleStore storage.PriceSampleStore, snapshotStore storage.MetricSnapshotStore, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		tradeStore:    tradeStore,
		sampleStore:   sampleStore,
		snapshotStore: snapshotStore,
		log:           log.Named("aggregator"),
	}
}

// HasSampleStore reports whether excursion operations are available.
func (a *Aggregator) HasSampleStore() bool {
	return a.sampleStore != nil
}

// loadValidTrades loads the user's trades and drops invalid records.
func (a *Aggregator) loadValidTrades(ctx context.Context, userID string) ([]*domain.Trade, []Rejection, error) {
	trades, err := a.tradeStore.GetByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load trades for %s: %w", userID, err)
	}

	valid, rejected, _ := ValidateTrades(trades, ExcludeInvalid)
	for _, r := range rejected {
		field := "unknown"
		var te *domain.TradeError
		if errors.As(r.Err, &te) {
			field = te.Field
		}
		observability.RecordTradeRejected(field)
		a.log.Warn("excluding invalid trade",
			zap.String("user_id", userID),
			zap.String("trade_id", r.TradeID),
			zap.Error(r.Err))
	}
	return valid, rejected, nil
}

// ComputeForUser computes all metrics over the user's stored trades.
// Invalid trades are excluded and reported in the result. A user with no
// trades gets a zeroed AllMetrics, not an error.
func (a *Aggregator) ComputeForUser(ctx context.Context, userID string, cfg domain.EngineConfig) (*UserMetrics, error) {
	start := time.Now()

	trades, rejected, err := a.loadValidTrades(ctx, userID)
	if err != nil {
		observability.RecordComputation("user", "error", 0, time.Since(start))
		return nil, err
	}

	all := Compute(trades, cfg)
	observability.RecordComputation("user", "success", len(trades), time.Since(start))

	a.log.Debug("computed metrics",
		zap.String("user_id", userID),
		zap.Int("trades", all.TotalTrades),
		zap.Int("closed", all.ClosedTrades),
		zap.Int("rejected", len(rejected)),
		zap.Duration("took", time.Since(start)))

	return &UserMetrics{
		UserID:   userID,
		Metrics:  all,
		Trades:   trades,
		Rejected: rejected,
	}, nil
}

// ComputeAndStore computes metrics for a user and persists a snapshot
// stamped with computedAtMs.
// Returns ErrNoTrades for users without valid trades, ErrInsufficientData when
// none of them are closed, and storage.ErrDuplicateKey if a snapshot for the
// same (user, computedAtMs) exists.
func (a *Aggregator) ComputeAndStore(ctx context.Context, userID string, cfg domain.EngineConfig, computedAtMs int64) (*domain.MetricSnapshot, error) {
	if a.snapshotStore == nil {
		return nil, errors.New("aggregator: snapshot store not configured")
	}

	res, err := a.ComputeForUser(ctx, userID, cfg)
	if err != nil {
		return nil, err
	}
	if res.Metrics.TotalTrades == 0 {
		return nil, ErrNoTrades
	}
	if res.Metrics.ClosedTrades == 0 {
		return nil, ErrInsufficientData
	}

	snap := domain.NewMetricSnapshot(idhash.ComputeSnapshotID(userID, computedAtMs), userID, computedAtMs, res.Metrics)

	// Append-only, returns ErrDuplicateKey on duplicate
	if err := a.snapshotStore.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot for %s: %w", userID, err)
	}
	return snap, nil
}

// PreviousSnapshot returns the user's latest stored snapshot, or nil if there is none.
func (a *Aggregator) PreviousSnapshot(ctx context.Context, userID string) (*domain.MetricSnapshot, error) {
	if a.snapshotStore == nil {
		return nil, nil
	}
	snap, err := a.snapshotStore.GetLatest(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot for %s: %w", userID, err)
	}
	return snap, nil
}

// DrawdownForUser returns the drawdown series over the user's valid trades.
func (a *Aggregator) DrawdownForUser(ctx context.Context, userID string, cfg domain.EngineConfig) ([]domain.DrawdownPoint, error) {
	trades, _, err := a.loadValidTrades(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeDrawdownSeries(trades, cfg), nil
}

// Excursion runs the excursion walk for one of the user's trades.
// A trade owned by another user is reported as storage.ErrNotFound.
func (a *Aggregator) Excursion(ctx context.Context, userID, tradeID string) (*domain.ExcursionMetrics, []domain.RunningPnL, error) {
	if a.sampleStore == nil {
		return nil, nil, errors.New("aggregator: price sample store not configured")
	}

	trade, samples, err := a.loadOwnedTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, nil, err
	}

	m, path := ComputeExcursion(trade, samples)
	observability.RecordExcursion()
	return m, path, nil
}

// MarkPrice values a trade at a point in time.
type MarkPrice struct {
	TradeID       string          `json:"trade_id"`
	AtMs          int64           `json:"at_ms"`
	Price         decimal.Decimal `json:"price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"` // before fees
}

// MarkToMarket values one of the user's trades at the last price sample at or
// before atMs, or the first sample when all of them are later.
// Returns lookup.ErrNoPriceData when the trade has no samples.
func (a *Aggregator) MarkToMarket(ctx context.Context, userID, tradeID string, atMs int64) (*MarkPrice, error) {
	if a.sampleStore == nil {
		return nil, errors.New("aggregator: price sample store not configured")
	}

	trade, samples, err := a.loadOwnedTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}

	price, err := lookup.PriceAt(atMs, lookup.Sorted(samples))
	if err != nil {
		return nil, err
	}

	return &MarkPrice{
		TradeID:       tradeID,
		AtMs:          atMs,
		Price:         price,
		UnrealizedPnL: trade.UnrealizedPnL(price),
	}, nil
}

// loadOwnedTrade loads a trade and its samples.
// A trade owned by another user is reported as storage.ErrNotFound.
func (a *Aggregator) loadOwnedTrade(ctx context.Context, userID, tradeID string) (*domain.Trade, []*domain.PriceSample, error) {
	trade, err := a.tradeStore.GetByID(ctx, tradeID)
	if err != nil {
		return nil, nil, err
	}
	if trade.UserID != userID {
		return nil, nil, storage.ErrNotFound
	}

	samples, err := a.sampleStore.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, nil, fmt.Errorf("load price samples for %s: %w", tradeID, err)
	}
	return trade, samples, nil
}

// ExcursionStatsForUser summarizes excursions over every valid trade of the user.
// Trades without samples are skipped.
func (a *Aggregator) ExcursionStatsForUser(ctx context.Context, userID string) (domain.ExcursionStats, error) {
	if a.sampleStore == nil {
		return domain.ExcursionStats{}, errors.New("aggregator: price sample store not configured")
	}

	trades, _, err := a.loadValidTrades(ctx, userID)
	if err != nil {
		return domain.ExcursionStats{}, err
	}

	items := make([]*domain.ExcursionMetrics, 0, len(trades))
	for _, t := range trades {
		samples, err := a.sampleStore.GetByTradeID(ctx, t.TradeID)
		if err != nil {
			return domain.ExcursionStats{}, fmt.Errorf("load price samples for %s: %w", t.TradeID, err)
		}
		m, _ := ComputeExcursion(t, samples)
		items = append(items, m)
	}
	return SummarizeExcursions(items), nil
}
