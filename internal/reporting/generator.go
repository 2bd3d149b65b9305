package reporting

import (
	"context"
	"fmt"
	"time"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/insight"
	"trading-journal/internal/metrics"
	"trading-journal/internal/observability"
)

// Generator produces reports from stored data.
type Generator struct {
	aggregator *metrics.Aggregator
	presets    benchmark.Presets
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(aggregator *metrics.Aggregator, presets benchmark.Presets) *Generator {
	return &Generator{
		aggregator: aggregator,
		presets:    presets,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for a user under the named preset.
func (g *Generator) Generate(ctx context.Context, userID, preset string, cfg domain.EngineConfig) (*Report, error) {
	table, err := g.presets.Get(preset)
	if err != nil {
		return nil, err
	}
	if preset == "" {
		preset = benchmark.DefaultPreset
	}

	um, err := g.aggregator.ComputeForUser(ctx, userID, cfg)
	if err != nil {
		return nil, fmt.Errorf("compute metrics: %w", err)
	}

	prevSnap, err := g.aggregator.PreviousSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	var previous *domain.AllMetrics
	if prevSnap != nil {
		previous = prevSnap.ToAllMetrics()
	}

	results := table.Results(um.Metrics, previous)
	assessment := insight.NewEvaluator(table).Evaluate(insight.Input{
		Metrics:  um.Metrics,
		Results:  results,
		Rejected: len(um.Rejected),
	})

	var excursions *domain.ExcursionStats
	if g.aggregator.HasSampleStore() {
		stats, err := g.aggregator.ExcursionStatsForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("excursion stats: %w", err)
		}
		excursions = &stats
	}

	rejected := make([]RejectedRow, len(um.Rejected))
	for i, r := range um.Rejected {
		id := r.TradeID
		if id == "" {
			id = fmt.Sprintf("#%d", r.Index)
		}
		rejected[i] = RejectedRow{TradeID: id, Reason: r.Err.Error()}
	}

	observability.RecordReportGenerated()

	return &Report{
		GeneratedAt: g.now(),
		UserID:      userID,
		Preset:      preset,
		Summary:     summarize(um.Metrics, um.Trades),
		Metrics:     um.Metrics,
		Results:     results,
		Assessment:  assessment,
		Drawdown:    metrics.ComputeDrawdownSeries(um.Trades, cfg),
		Excursions:  excursions,
		Rejected:    rejected,
	}, nil
}

// summarize counts trades and finds the covered time range.
func summarize(m *domain.AllMetrics, trades []*domain.Trade) Summary {
	s := Summary{
		TotalTrades:  m.TotalTrades,
		ClosedTrades: m.ClosedTrades,
		OpenTrades:   m.OpenTrades,
	}

	symbols := make(map[string]struct{})
	for _, t := range trades {
		symbols[t.Symbol] = struct{}{}
		for _, ts := range []*int64{t.EntryTimeMs, t.ExitTimeMs} {
			if ts == nil {
				continue
			}
			if s.DateRangeStart == nil || *ts < *s.DateRangeStart {
				v := *ts
				s.DateRangeStart = &v
			}
			if s.DateRangeEnd == nil || *ts > *s.DateRangeEnd {
				v := *ts
				s.DateRangeEnd = &v
			}
		}
	}
	s.Symbols = len(symbols)

	return s
}
