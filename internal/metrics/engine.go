package metrics

import "trading-journal/internal/domain"

// Compute calculates every engine metric for a set of trades.
//
// Compute is pure: it reads only its arguments, never modifies the input
// slice or its trades, and returns identical output for identical input.
// Empty input yields a zeroed AllMetrics with Advanced.Insufficient set.
// Open trades are counted but contribute no realized P&L.
// Trades are assumed valid; run ValidateTrades first at the boundary.
func Compute(trades []*domain.Trade, cfg domain.EngineConfig) *domain.AllMetrics {
	cfg = cfg.WithDefaults()

	all := &domain.AllMetrics{}
	for _, t := range trades {
		if t == nil {
			continue
		}
		all.TotalTrades++
		if t.IsClosed() {
			all.ClosedTrades++
		} else {
			all.OpenTrades++
		}
	}

	closed := orderClosedTrades(trades)
	dd := summarizeDrawdown(drawdownSeries(closed, cfg.InitialCapital))

	all.Essential = computeEssential(closed)
	all.Risk = computeRisk(closed, all.Essential, dd, cfg)
	all.Advanced = computeRatios(periodReturns(closed, cfg), dd.max, cfg)
	return all
}
