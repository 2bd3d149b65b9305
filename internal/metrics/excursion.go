package metrics

import (
	"trading-journal/internal/domain"
	"trading-journal/internal/lookup"
)

// ComputeExcursion walks a trade's price samples and tracks unrealized P&L.
// Samples are windowed to [entry time, exit time] when those are known and
// sorted by timestamp; the input slice is not modified.
// MAE is the minimum unrealized P&L reached (never above 0), MFE the maximum
// (never below 0). Unrealized P&L excludes fees.
// Returns the summary and the running path for charting.
func ComputeExcursion(trade *domain.Trade, samples []*domain.PriceSample) (*domain.ExcursionMetrics, []domain.RunningPnL) {
	m := &domain.ExcursionMetrics{}
	if trade == nil {
		return m, nil
	}
	m.TradeID = trade.TradeID

	window := lookup.Window(samples, trade.EntryTimeMs, trade.ExitTimeMs)
	m.Samples = len(window)
	if len(window) == 0 {
		return m, nil
	}

	notional := trade.Notional().InexactFloat64()
	path := make([]domain.RunningPnL, len(window))
	mae, mfe := 0.0, 0.0

	for i, s := range window {
		pnl := trade.UnrealizedPnL(s.Price).InexactFloat64()
		if pnl < mae {
			mae = pnl
		}
		if pnl > mfe {
			mfe = pnl
		}
		path[i] = domain.RunningPnL{
			TimestampMs:      s.TimestampMs,
			Price:            s.Price.InexactFloat64(),
			CumulativePnL:    pnl,
			CumulativePnLPct: safeDiv(pnl, notional) * 100,
			RunningMAE:       mae,
			RunningMFE:       mfe,
		}
	}

	m.MAE = mae
	m.MFE = mfe
	if mae < 0 {
		m.EdgeRatio = safeDiv(mfe, -mae)
	}
	m.MAEPercent = safeDiv(mae, notional) * 100
	updraw := safeDiv(mfe, notional) * 100
	m.UpdrawPercent = &updraw

	if realized, ok := trade.PnL(); ok && mfe > 0 {
		eff := safeDiv(realized.InexactFloat64(), mfe)
		m.ExitEfficiency = &eff
	}
	return m, path
}

// SummarizeExcursions averages excursion metrics over trades that had samples.
func SummarizeExcursions(items []*domain.ExcursionMetrics) domain.ExcursionStats {
	var s domain.ExcursionStats
	var sumMAE, sumMFE, sumEdge float64

	for _, m := range items {
		if m == nil || m.Samples == 0 {
			continue
		}
		s.TradesAnalyzed++
		sumMAE += m.MAE
		sumMFE += m.MFE
		sumEdge += m.EdgeRatio
		if m.MAE < s.WorstMAE {
			s.WorstMAE = m.MAE
		}
		if m.MFE > s.BestMFE {
			s.BestMFE = m.MFE
		}
	}

	if s.TradesAnalyzed > 0 {
		n := float64(s.TradesAnalyzed)
		s.AvgMAE = sumMAE / n
		s.AvgMFE = sumMFE / n
		s.AvgEdgeRatio = sumEdge / n
	}
	return s
}
