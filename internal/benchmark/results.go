package benchmark

import (
	"math"

	"trading-journal/internal/domain"
)

// Metric IDs understood by Results.
const (
	MetricNetPnL               = "net_pnl"
	MetricWinRate              = "win_rate"
	MetricProfitFactor         = "profit_factor"
	MetricExpectancy           = "expectancy"
	MetricMaxDrawdown          = "max_drawdown"
	MetricRecoveryFactor       = "recovery_factor"
	MetricRiskOfRuin           = "risk_of_ruin"
	MetricKellyPercent         = "kelly_percent"
	MetricMaxConsecutiveLosses = "max_consecutive_losses"
	MetricRMultiple            = "r_multiple"
	MetricSharpeRatio          = "sharpe_ratio"
	MetricSortinoRatio         = "sortino_ratio"
	MetricCalmarRatio          = "calmar_ratio"
	MetricTreynorRatio         = "treynor_ratio"
	MetricJensensAlpha         = "jensens_alpha"
)

// trendEpsilon is the smallest change reported as up or down.
const trendEpsilon = 1e-9

// extractor reads one metric; ok is false when the metric has no meaningful value.
type extractor func(m *domain.AllMetrics) (float64, bool)

type catalogueEntry struct {
	id  string
	get extractor
}

func always(f func(m *domain.AllMetrics) float64) extractor {
	return func(m *domain.AllMetrics) (float64, bool) { return f(m), true }
}

func closedOnly(f func(m *domain.AllMetrics) float64) extractor {
	return func(m *domain.AllMetrics) (float64, bool) { return f(m), m.ClosedTrades > 0 }
}

// profitFactor is unavailable when every closed trade broke even.
func profitFactor(m *domain.AllMetrics) (float64, bool) {
	return m.Essential.ProfitFactor, m.Essential.Wins > 0 || m.Essential.Losses > 0
}

func ratio(f func(m *domain.AllMetrics) float64) extractor {
	return func(m *domain.AllMetrics) (float64, bool) { return f(m), !m.Advanced.Insufficient }
}

func optional(f func(m *domain.AllMetrics) *float64) extractor {
	return func(m *domain.AllMetrics) (float64, bool) {
		v := f(m)
		if v == nil || m.Advanced.Insufficient {
			return 0, false
		}
		return *v, true
	}
}

// catalogue fixes the display order of results.
var catalogue = []catalogueEntry{
	{MetricNetPnL, always(func(m *domain.AllMetrics) float64 { return m.Essential.NetPnL })},
	{MetricWinRate, closedOnly(func(m *domain.AllMetrics) float64 { return m.Essential.WinRate })},
	{MetricProfitFactor, profitFactor},
	{MetricExpectancy, closedOnly(func(m *domain.AllMetrics) float64 { return m.Essential.Expectancy })},
	{MetricMaxDrawdown, closedOnly(func(m *domain.AllMetrics) float64 { return m.Risk.MaxDrawdown })},
	{MetricRecoveryFactor, closedOnly(func(m *domain.AllMetrics) float64 { return m.Risk.RecoveryFactor })},
	{MetricRiskOfRuin, closedOnly(func(m *domain.AllMetrics) float64 { return m.Risk.RiskOfRuin })},
	{MetricKellyPercent, closedOnly(func(m *domain.AllMetrics) float64 { return m.Risk.KellyPercent })},
	{MetricMaxConsecutiveLosses, closedOnly(func(m *domain.AllMetrics) float64 { return float64(m.Risk.MaxConsecutiveLosses) })},
	{MetricRMultiple, func(m *domain.AllMetrics) (float64, bool) { return m.Risk.RMultiple, m.Risk.RMultipleSamples > 0 }},
	{MetricSharpeRatio, ratio(func(m *domain.AllMetrics) float64 { return m.Advanced.SharpeRatio })},
	{MetricSortinoRatio, ratio(func(m *domain.AllMetrics) float64 { return m.Advanced.SortinoRatio })},
	{MetricCalmarRatio, ratio(func(m *domain.AllMetrics) float64 { return m.Advanced.CalmarRatio })},
	{MetricTreynorRatio, optional(func(m *domain.AllMetrics) *float64 { return m.Advanced.TreynorRatio })},
	{MetricJensensAlpha, optional(func(m *domain.AllMetrics) *float64 { return m.Advanced.JensensAlpha })},
}

// Value returns a metric value by ID; ok is false for unknown or unavailable metrics.
func Value(m *domain.AllMetrics, id string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	for _, e := range catalogue {
		if e.id == id {
			return e.get(m)
		}
	}
	return 0, false
}

// IDs returns the metric IDs with thresholds in t, in display order.
func (t Table) IDs() []string {
	var ids []string
	for _, e := range catalogue {
		if _, ok := t[e.id]; ok {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// Results classifies every available metric that has thresholds in t.
// When previous is non-nil each result carries a trend against it.
// Metrics without a meaningful value (no closed trades, too few return
// periods, no benchmark) are omitted. Output order is fixed.
func (t Table) Results(m, previous *domain.AllMetrics) []domain.MetricResult {
	if m == nil {
		return nil
	}

	var out []domain.MetricResult
	for _, e := range catalogue {
		th, ok := t[e.id]
		if !ok {
			continue
		}
		v, ok := e.get(m)
		if !ok {
			continue
		}

		r := domain.MetricResult{
			ID:     e.id,
			Label:  th.Label,
			Value:  v,
			Status: th.Classify(v),
			Format: th.Format,
		}
		if previous != nil {
			if pv, ok := e.get(previous); ok {
				tr := trend(v, pv)
				r.Trend = &tr
			}
		}
		out = append(out, r)
	}
	return out
}

func trend(current, previous float64) domain.Trend {
	switch d := current - previous; {
	case math.Abs(d) <= trendEpsilon:
		return domain.TrendFlat
	case d > 0:
		return domain.TrendUp
	default:
		return domain.TrendDown
	}
}
