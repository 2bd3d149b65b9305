// Package insight turns classified metrics into human-readable observations.
package insight

import "trading-journal/internal/domain"

// Input contains everything the evaluator looks at.
type Input struct {
	Metrics  *domain.AllMetrics
	Results  []domain.MetricResult // classified by benchmark.Table.Results
	Rejected int                   // trades excluded by validation
}

// Assessment is the overall verdict with its supporting insights.
type Assessment struct {
	Overall  domain.Status          `json:"overall"`
	Insights []domain.MetricInsight `json:"insights"`
}

// Data-quality insight IDs.
const (
	InsightInsufficientRatios = "insufficient_ratio_samples"
	InsightNoClosedTrades     = "no_closed_trades"
	InsightRejectedTrades     = "rejected_trades"
	InsightNoBenchmark        = "no_benchmark"
)
