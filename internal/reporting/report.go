package reporting

import (
	"time"

	"trading-journal/internal/domain"
	"trading-journal/internal/insight"
)

// Report is a point-in-time performance report for one user.
type Report struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`
	UserID      string    `json:"user_id"`
	Preset      string    `json:"preset"`

	Summary Summary `json:"summary"`

	Metrics    *domain.AllMetrics    `json:"metrics"`
	Results    []domain.MetricResult `json:"results"` // classified and ordered for display
	Assessment *insight.Assessment   `json:"assessment"`

	Drawdown   []domain.DrawdownPoint `json:"drawdown"`
	Excursions *domain.ExcursionStats `json:"excursions,omitempty"` // nil when no price samples are configured

	Rejected []RejectedRow `json:"rejected,omitempty"`
}

// Summary describes the trades a report was built from.
type Summary struct {
	TotalTrades    int    `json:"total_trades"`
	ClosedTrades   int    `json:"closed_trades"`
	OpenTrades     int    `json:"open_trades"`
	Symbols        int    `json:"symbols"`
	DateRangeStart *int64 `json:"date_range_start,omitempty"` // Unix ms, nil when no trade carries a timestamp
	DateRangeEnd   *int64 `json:"date_range_end,omitempty"`
}

// RejectedRow lists one trade excluded by validation.
type RejectedRow struct {
	TradeID string `json:"trade_id"`
	Reason  string `json:"reason"`
}
