package domain

// ProfitFactorSentinel is reported as ProfitFactor when there are winning
// trades but no losing ones. It stays JSON-encodable, unlike +Inf.
const ProfitFactorSentinel = 999.99

// AllMetrics is the full result of one engine run.
type AllMetrics struct {
	TotalTrades  int `json:"total_trades"`
	ClosedTrades int `json:"closed_trades"`
	OpenTrades   int `json:"open_trades"`

	Essential EssentialMetrics `json:"essential"`
	Risk      RiskMetrics      `json:"risk"`
	Advanced  AdvancedRatios   `json:"advanced"`
}

// EssentialMetrics are the headline journal statistics over closed trades.
type EssentialMetrics struct {
	NetPnL      float64 `json:"net_pnl"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"` // <= 0
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Breakeven   int     `json:"breakeven"`

	WinRate               float64 `json:"win_rate"` // [0, 1]
	ProfitFactor          float64 `json:"profit_factor"`
	ProfitFactorUnbounded bool    `json:"profit_factor_unbounded"` // wins but no losses
	Expectancy            float64 `json:"expectancy"`
	AverageWin            float64 `json:"average_win"`
	AverageLoss           float64 `json:"average_loss"` // <= 0
	LargestWin            float64 `json:"largest_win"`
	LargestLoss           float64 `json:"largest_loss"` // <= 0
}

// RiskMetrics are derived from the equity curve and the win/loss profile.
type RiskMetrics struct {
	MaxDrawdown    float64 `json:"max_drawdown"`     // fraction of peak, [0, 1]
	AvgDrawdown    float64 `json:"avg_drawdown"`     // mean over in-drawdown points
	MaxDrawdownAbs float64 `json:"max_drawdown_abs"` // currency
	RecoveryFactor float64 `json:"recovery_factor"`

	RiskOfRuin   float64 `json:"risk_of_ruin"` // [0, 1]
	KellyPercent float64 `json:"kelly_percent"`

	MaxConsecutiveLosses int `json:"max_consecutive_losses"`
	MaxConsecutiveWins   int `json:"max_consecutive_wins"`

	RMultiple        float64 `json:"r_multiple"`
	RMultipleSamples int     `json:"r_multiple_samples"`
}

// AdvancedRatios are risk-adjusted return ratios over the period return series.
type AdvancedRatios struct {
	Periods          int     `json:"periods"`
	Insufficient     bool    `json:"insufficient"` // too few periods, ratios are 0
	MeanReturn       float64 `json:"mean_return"`  // per period
	Volatility       float64 `json:"volatility"`   // per-period sample std dev
	AnnualizedReturn float64 `json:"annualized_return"`

	SharpeRatio  float64  `json:"sharpe_ratio"`
	SortinoRatio float64  `json:"sortino_ratio"`
	CalmarRatio  float64  `json:"calmar_ratio"`
	Beta         *float64 `json:"beta"`          // nil without usable benchmark
	TreynorRatio *float64 `json:"treynor_ratio"` // nil without usable benchmark
	JensensAlpha *float64 `json:"jensens_alpha"` // nil without usable benchmark
}

// Status classifies a metric against its benchmark thresholds.
type Status string

// Status constants
const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Severity orders statuses: good < warning < danger.
func (s Status) Severity() int {
	switch s {
	case StatusGood:
		return 0
	case StatusWarning:
		return 1
	case StatusDanger:
		return 2
	default:
		return -1
	}
}

// Trend compares a metric with its previous value.
type Trend string

// Trend constants
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Format is a display hint for a metric value.
type Format string

// Format constants
const (
	FormatCurrency   Format = "currency"
	FormatPercentage Format = "percentage"
	FormatDecimal    Format = "decimal"
	FormatCount      Format = "count"
)

// MetricResult is a classified metric ready for display.
type MetricResult struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
	Trend  *Trend  `json:"trend,omitempty"`
	Format Format  `json:"format"`
}

// MetricInsight is a human-readable flagged observation.
type MetricInsight struct {
	MetricID  string `json:"metric_id"`
	Severity  Status `json:"severity"`
	Message   string `json:"message"`
	Threshold string `json:"threshold,omitempty"`
	Actual    string `json:"actual,omitempty"`
}

// MetricSnapshot is a persisted summary of AllMetrics for one user.
// Corresponds to metric_snapshots table in ClickHouse.
type MetricSnapshot struct {
	SnapshotID   string // deterministic hash of (user_id, computed_at_ms)
	UserID       string
	ComputedAtMs int64

	TotalTrades  int
	ClosedTrades int
	OpenTrades   int

	Wins   int
	Losses int

	NetPnL       float64
	WinRate      float64
	ProfitFactor float64
	Expectancy   float64
	AverageWin   float64
	AverageLoss  float64

	MaxDrawdown          float64
	AvgDrawdown          float64
	RecoveryFactor       float64
	RiskOfRuin           float64
	KellyPercent         float64
	MaxConsecutiveLosses int
	RMultiple            float64

	RatioPeriods       int
	RatiosInsufficient bool // ratios below were not computable and are stored as 0
	SharpeRatio        float64
	SortinoRatio       float64
	CalmarRatio        float64
	TreynorRatio       *float64
	JensensAlpha       *float64
}

// NewMetricSnapshot flattens AllMetrics into a snapshot row.
func NewMetricSnapshot(snapshotID, userID string, computedAtMs int64, m *AllMetrics) *MetricSnapshot {
	return &MetricSnapshot{
		SnapshotID:           snapshotID,
		UserID:               userID,
		ComputedAtMs:         computedAtMs,
		TotalTrades:          m.TotalTrades,
		ClosedTrades:         m.ClosedTrades,
		OpenTrades:           m.OpenTrades,
		Wins:                 m.Essential.Wins,
		Losses:               m.Essential.Losses,
		NetPnL:               m.Essential.NetPnL,
		WinRate:              m.Essential.WinRate,
		ProfitFactor:         m.Essential.ProfitFactor,
		Expectancy:           m.Essential.Expectancy,
		AverageWin:           m.Essential.AverageWin,
		AverageLoss:          m.Essential.AverageLoss,
		MaxDrawdown:          m.Risk.MaxDrawdown,
		AvgDrawdown:          m.Risk.AvgDrawdown,
		RecoveryFactor:       m.Risk.RecoveryFactor,
		RiskOfRuin:           m.Risk.RiskOfRuin,
		KellyPercent:         m.Risk.KellyPercent,
		MaxConsecutiveLosses: m.Risk.MaxConsecutiveLosses,
		RMultiple:            m.Risk.RMultiple,
		RatioPeriods:         m.Advanced.Periods,
		RatiosInsufficient:   m.Advanced.Insufficient,
		SharpeRatio:          m.Advanced.SharpeRatio,
		SortinoRatio:         m.Advanced.SortinoRatio,
		CalmarRatio:          m.Advanced.CalmarRatio,
		TreynorRatio:         m.Advanced.TreynorRatio,
		JensensAlpha:         m.Advanced.JensensAlpha,
	}
}

// ToAllMetrics expands a snapshot back into the subset of AllMetrics it stores.
// Used to compute trends against the previous snapshot.
func (s *MetricSnapshot) ToAllMetrics() *AllMetrics {
	return &AllMetrics{
		TotalTrades:  s.TotalTrades,
		ClosedTrades: s.ClosedTrades,
		OpenTrades:   s.OpenTrades,
		Essential: EssentialMetrics{
			Wins:         s.Wins,
			Losses:       s.Losses,
			NetPnL:       s.NetPnL,
			WinRate:      s.WinRate,
			ProfitFactor: s.ProfitFactor,
			Expectancy:   s.Expectancy,
			AverageWin:   s.AverageWin,
			AverageLoss:  s.AverageLoss,
		},
		Risk: RiskMetrics{
			MaxDrawdown:          s.MaxDrawdown,
			AvgDrawdown:          s.AvgDrawdown,
			RecoveryFactor:       s.RecoveryFactor,
			RiskOfRuin:           s.RiskOfRuin,
			KellyPercent:         s.KellyPercent,
			MaxConsecutiveLosses: s.MaxConsecutiveLosses,
			RMultiple:            s.RMultiple,
		},
		Advanced: AdvancedRatios{
			Periods:      s.RatioPeriods,
			Insufficient: s.RatiosInsufficient,
			SharpeRatio:  s.SharpeRatio,
			SortinoRatio: s.SortinoRatio,
			CalmarRatio:  s.CalmarRatio,
			TreynorRatio: s.TreynorRatio,
			JensensAlpha: s.JensensAlpha,
		},
	}
}
