package domain

import "github.com/shopspring/decimal"

// PriceSample is one observed price while a trade was open.
// Corresponds to price_samples table in ClickHouse.
type PriceSample struct {
	TradeID     string
	TimestampMs int64 // Unix timestamp in milliseconds
	Price       decimal.Decimal
}

// RunningPnL is one point of a trade's unrealized P&L path.
type RunningPnL struct {
	TimestampMs      int64   `json:"timestamp_ms"`
	Price            float64 `json:"price"`
	CumulativePnL    float64 `json:"cumulative_pnl"`     // unrealized P&L at this sample
	CumulativePnLPct float64 `json:"cumulative_pnl_pct"` // as % of entry notional
	RunningMAE       float64 `json:"running_mae"`        // worst unrealized P&L so far (<= 0)
	RunningMFE       float64 `json:"running_mfe"`        // best unrealized P&L so far (>= 0)
}

// ExcursionMetrics summarizes a trade's price path.
type ExcursionMetrics struct {
	TradeID        string   `json:"trade_id"`
	MAE            float64  `json:"mae"`             // maximum adverse excursion (<= 0)
	MFE            float64  `json:"mfe"`             // maximum favorable excursion (>= 0)
	EdgeRatio      float64  `json:"edge_ratio"`      // MFE / |MAE|, 0 when MAE is 0
	MAEPercent     float64  `json:"mae_percent"`     // MAE as % of entry notional
	UpdrawPercent  *float64 `json:"updraw_percent"`  // MFE as % of entry notional, nil without samples
	ExitEfficiency *float64 `json:"exit_efficiency"` // realized P&L / MFE, nil for open trades or MFE == 0
	Samples        int      `json:"samples"`
}

// ExcursionStats aggregates ExcursionMetrics over many trades.
type ExcursionStats struct {
	TradesAnalyzed int     `json:"trades_analyzed"`
	AvgMAE         float64 `json:"avg_mae"`
	AvgMFE         float64 `json:"avg_mfe"`
	AvgEdgeRatio   float64 `json:"avg_edge_ratio"`
	WorstMAE       float64 `json:"worst_mae"`
	BestMFE        float64 `json:"best_mfe"`
}

// DrawdownPoint is one sample of the equity curve with its drawdown.
type DrawdownPoint struct {
	Index       int     `json:"index"`
	TradeID     string  `json:"trade_id"`
	TimestampMs *int64  `json:"timestamp_ms,omitempty"`
	Value       float64 `json:"value"`    // equity after this trade
	Peak        float64 `json:"peak"`     // running maximum of equity
	Drawdown    float64 `json:"drawdown"` // (peak - value) / peak, in [0, 1]
	InDrawdown  bool    `json:"in_drawdown"`
}
