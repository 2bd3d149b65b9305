package metrics

import "trading-journal/internal/domain"

// drawdownSummary holds the aggregate view of a drawdown series.
type drawdownSummary struct {
	max    float64 // fractional
	avg    float64 // mean over in-drawdown points
	maxAbs float64 // currency
}

// ComputeDrawdownSeries builds the equity curve of closed trades and its drawdown.
// The curve starts at cfg.InitialCapital (0 when not supplied) and the running peak
// starts at that base. Drawdown = (peak - value) / max(peak, epsilon), clamped to [0, 1].
// Returns one point per closed trade; nil when there are none.
func ComputeDrawdownSeries(trades []*domain.Trade, cfg domain.EngineConfig) []domain.DrawdownPoint {
	cfg = cfg.WithDefaults()
	return drawdownSeries(orderClosedTrades(trades), cfg.InitialCapital)
}

func drawdownSeries(closed []closedTrade, base float64) []domain.DrawdownPoint {
	if len(closed) == 0 {
		return nil
	}

	points := make([]domain.DrawdownPoint, len(closed))
	equity := base
	peak := base

	for i, c := range closed {
		equity += c.pnl
		if equity > peak {
			peak = equity
		}

		denom := peak
		if denom < epsilon {
			denom = epsilon
		}
		dd := clamp(finite((peak-equity)/denom), 0, 1)

		var ts *int64
		if t, ok := c.trade.OrderTimeMs(); ok {
			ts = &t
		}

		points[i] = domain.DrawdownPoint{
			Index:       i,
			TradeID:     c.trade.TradeID,
			TimestampMs: ts,
			Value:       equity,
			Peak:        peak,
			Drawdown:    dd,
			InDrawdown:  equity < peak,
		}
	}
	return points
}

func summarizeDrawdown(points []domain.DrawdownPoint) drawdownSummary {
	var s drawdownSummary
	sum := 0.0
	count := 0
	for _, p := range points {
		if p.Drawdown > s.max {
			s.max = p.Drawdown
		}
		if abs := p.Peak - p.Value; abs > s.maxAbs {
			s.maxAbs = abs
		}
		if p.InDrawdown {
			sum += p.Drawdown
			count++
		}
	}
	if count > 0 {
		s.avg = sum / float64(count)
	}
	return s
}
