package domain

// Periodicity is the bucket size of the return series used by risk-adjusted ratios.
type Periodicity string

// Periodicity constants
const (
	PeriodDaily   Periodicity = "daily"
	PeriodWeekly  Periodicity = "weekly"
	PeriodMonthly Periodicity = "monthly"
)

// PeriodsPerYear returns the annualization factor for the periodicity.
// Unknown values fall back to daily.
func (p Periodicity) PeriodsPerYear() float64 {
	switch p {
	case PeriodWeekly:
		return 52
	case PeriodMonthly:
		return 12
	default:
		return 252
	}
}

// Valid reports whether p is a known periodicity.
func (p Periodicity) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// EngineConfig parameterizes a metrics computation.
// It is passed explicitly on every call; the engine reads no global state.
type EngineConfig struct {
	RiskFreeRate     float64     // annual, as a fraction (0.04 = 4%)
	BenchmarkReturns []float64   // per-period benchmark returns, aligned from the first period
	InitialCapital   float64     // 0 means not supplied
	Periodicity      Periodicity // daily | weekly | monthly

	RuinThreshold   float64 // fraction of capital whose loss counts as ruin
	RiskPerTrade    float64 // fraction of capital risked per trade when InitialCapital is 0
	MinRatioSamples int     // minimum return periods for risk-adjusted ratios
}

// Engine defaults applied by WithDefaults.
const (
	DefaultRuinThreshold   = 0.5
	DefaultRiskPerTrade    = 0.01
	DefaultMinRatioSamples = 2
)

// DefaultEngineConfig returns a daily, zero risk-free-rate configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Periodicity:     PeriodDaily,
		RuinThreshold:   DefaultRuinThreshold,
		RiskPerTrade:    DefaultRiskPerTrade,
		MinRatioSamples: DefaultMinRatioSamples,
	}
}

// WithDefaults fills zero or out-of-range fields with defaults.
func (c EngineConfig) WithDefaults() EngineConfig {
	if !c.Periodicity.Valid() {
		c.Periodicity = PeriodDaily
	}
	if c.RuinThreshold <= 0 || c.RuinThreshold > 1 {
		c.RuinThreshold = DefaultRuinThreshold
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 1 {
		c.RiskPerTrade = DefaultRiskPerTrade
	}
	if c.MinRatioSamples < 2 {
		c.MinRatioSamples = DefaultMinRatioSamples
	}
	if c.InitialCapital < 0 {
		c.InitialCapital = 0
	}
	return c
}
