// Package orchestrator runs periodic metric snapshots across all users.
// It coordinates: list users → compute metrics → store snapshot
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trading-journal/internal/domain"
	"trading-journal/internal/metrics"
	"trading-journal/internal/observability"
	"trading-journal/internal/storage"
)

// DefaultConcurrency bounds how many users are processed at once.
const DefaultConcurrency = 4

// Orchestrator coordinates a snapshot run.
type Orchestrator struct {
	tradeStore  storage.TradeStore
	aggregator  *metrics.Aggregator
	config      domain.EngineConfig
	concurrency int
	now         func() time.Time
	log         *zap.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	TradeStore storage.TradeStore
	Aggregator *metrics.Aggregator

	// Engine configuration applied to every user
	Config domain.EngineConfig

	// Optional
	Concurrency int              // defaults to DefaultConcurrency
	Clock       func() time.Time // defaults to time.Now
	Logger      *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		tradeStore:  opts.TradeStore,
		aggregator:  opts.Aggregator,
		config:      opts.Config,
		concurrency: opts.Concurrency,
		now:         opts.Clock,
		log:         opts.Logger,
	}
	if o.concurrency <= 0 {
		o.concurrency = DefaultConcurrency
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	o.log = o.log.Named("orchestrator")
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ComputedAtMs    int64
	UsersProcessed  int
	SnapshotsStored int
	UsersSkipped    int      // no trades, no closed trades, or snapshot already present
	Errors          []string // per-user failures, sorted
}

// Run computes and stores one snapshot per user, all stamped with the same
// computed_at. Per-user failures are collected in the result; only a failure
// to list users or a cancelled context aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{ComputedAtMs: o.now().UnixMilli()}

	users, err := o.tradeStore.ListUserIDs(ctx)
	if err != nil {
		observability.RecordSnapshotRun("error", 0, time.Since(start))
		return nil, fmt.Errorf("list users: %w", err)
	}
	result.UsersProcessed = len(users)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, userID := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, err := o.aggregator.ComputeAndStore(gctx, userID, o.config, result.ComputedAtMs)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				result.SnapshotsStored++
			case errors.Is(err, metrics.ErrNoTrades),
				errors.Is(err, metrics.ErrInsufficientData),
				errors.Is(err, storage.ErrDuplicateKey):
				result.UsersSkipped++
				o.log.Debug("snapshot skipped", zap.String("user_id", userID), zap.Error(err))
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				result.Errors = append(result.Errors, fmt.Sprintf("snapshot %s: %v", userID, err))
				o.log.Warn("snapshot failed", zap.String("user_id", userID), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.RecordSnapshotRun("cancelled", result.SnapshotsStored, time.Since(start))
		return nil, fmt.Errorf("snapshot run: %w", err)
	}
	sort.Strings(result.Errors)

	status := "success"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	observability.RecordSnapshotRun(status, result.SnapshotsStored, time.Since(start))

	o.log.Info("snapshot run completed",
		zap.Int("users", result.UsersProcessed),
		zap.Int("stored", result.SnapshotsStored),
		zap.Int("skipped", result.UsersSkipped),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("took", time.Since(start)))

	return result, nil
}
