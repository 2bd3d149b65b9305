package insight

import (
	"fmt"
	"sort"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
)

// Evaluator produces an Assessment against one benchmark table.
type Evaluator struct {
	table benchmark.Table
}

// NewEvaluator creates a new insight evaluator.
func NewEvaluator(table benchmark.Table) *Evaluator {
	return &Evaluator{table: table}
}

// Evaluate produces an Assessment from classified results.
// Overall is the worst status among results, good when there are none.
// Every warning or danger result yields one insight; data-quality
// observations are appended after them. Danger insights sort first.
func (e *Evaluator) Evaluate(in Input) *Assessment {
	a := &Assessment{Overall: domain.StatusGood}

	for _, r := range in.Results {
		if r.Status.Severity() > a.Overall.Severity() {
			a.Overall = r.Status
		}
		if r.Status == domain.StatusGood {
			continue
		}
		th, ok := e.table[r.ID]
		if !ok {
			continue
		}
		a.Insights = append(a.Insights, metricInsight(r, th))
	}

	sort.SliceStable(a.Insights, func(i, j int) bool {
		return a.Insights[i].Severity.Severity() > a.Insights[j].Severity.Severity()
	})

	a.Insights = append(a.Insights, dataQualityInsights(in)...)
	return a
}

// metricInsight describes how a result misses its benchmark.
// A warning is compared against the good boundary, a danger against the warning boundary.
func metricInsight(r domain.MetricResult, th benchmark.Thresholds) domain.MetricInsight {
	boundary := th.Good
	if r.Status == domain.StatusDanger {
		boundary = th.Warning
	}

	verb := "is below"
	if th.Direction == benchmark.LowerIsBetter {
		verb = "exceeds"
	}

	actual := FormatValue(r.Value, r.Format)
	threshold := FormatValue(boundary, r.Format)

	return domain.MetricInsight{
		MetricID:  r.ID,
		Severity:  r.Status,
		Message:   fmt.Sprintf("%s: %s %s %s benchmark %s", r.Status, r.Label, actual, verb, threshold),
		Threshold: threshold,
		Actual:    actual,
	}
}

func dataQualityInsights(in Input) []domain.MetricInsight {
	var out []domain.MetricInsight
	m := in.Metrics
	if m == nil {
		return nil
	}

	if m.ClosedTrades == 0 && m.OpenTrades > 0 {
		out = append(out, domain.MetricInsight{
			MetricID: InsightNoClosedTrades,
			Severity: domain.StatusWarning,
			Message:  fmt.Sprintf("warning: no closed trades yet, %d open position(s) contribute no realized P&L", m.OpenTrades),
		})
	}
	if m.ClosedTrades > 0 && m.Advanced.Insufficient {
		out = append(out, domain.MetricInsight{
			MetricID: InsightInsufficientRatios,
			Severity: domain.StatusWarning,
			Message:  fmt.Sprintf("warning: risk-adjusted ratios omitted, only %d return period(s) available", m.Advanced.Periods),
			Actual:   fmt.Sprintf("%d", m.Advanced.Periods),
		})
	}
	if m.ClosedTrades > 0 && !m.Advanced.Insufficient && m.Advanced.Beta == nil {
		out = append(out, domain.MetricInsight{
			MetricID: InsightNoBenchmark,
			Severity: domain.StatusGood,
			Message:  "info: Treynor ratio and Jensen's alpha need benchmark returns",
		})
	}
	if in.Rejected > 0 {
		out = append(out, domain.MetricInsight{
			MetricID: InsightRejectedTrades,
			Severity: domain.StatusWarning,
			Message:  fmt.Sprintf("warning: %d invalid trade(s) excluded from metrics", in.Rejected),
			Actual:   fmt.Sprintf("%d", in.Rejected),
		})
	}
	return out
}

// FormatValue renders a metric value for display.
func FormatValue(v float64, f domain.Format) string {
	switch f {
	case domain.FormatPercentage:
		return fmt.Sprintf("%.2f%%", v*100)
	case domain.FormatCount:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
