package metrics

import (
	"math"

	"trading-journal/internal/domain"
)

// computeRisk calculates drawdown-derived and win/loss-profile risk metrics.
func computeRisk(closed []closedTrade, essential domain.EssentialMetrics, dd drawdownSummary, cfg domain.EngineConfig) domain.RiskMetrics {
	m := domain.RiskMetrics{
		MaxDrawdown:    dd.max,
		AvgDrawdown:    dd.avg,
		MaxDrawdownAbs: dd.maxAbs,
		RecoveryFactor: safeDiv(essential.NetPnL, dd.maxAbs),
	}
	if len(closed) == 0 {
		return m
	}

	m.RiskOfRuin = computeRiskOfRuin(essential, len(closed), cfg)
	m.KellyPercent = computeKelly(essential, len(closed)) * 100
	m.MaxConsecutiveLosses, m.MaxConsecutiveWins = computeStreaks(closed)
	m.RMultiple, m.RMultipleSamples = computeRMultiple(closed)
	return m
}

// computeStreaks finds the longest streaks of pnl <= 0 and pnl > 0.
// Trades must be in chronological order.
func computeStreaks(closed []closedTrade) (maxLosses, maxWins int) {
	losses, wins := 0, 0
	for _, c := range closed {
		if c.pnl <= 0 {
			losses++
			wins = 0
		} else {
			wins++
			losses = 0
		}
		if losses > maxLosses {
			maxLosses = losses
		}
		if wins > maxWins {
			maxWins = wins
		}
	}
	return maxLosses, maxWins
}

// computeRMultiple averages pnl / initial risk over trades with a stop loss.
// Returns (0, 0) when no trade defines a risk unit.
func computeRMultiple(closed []closedTrade) (float64, int) {
	var rs []float64
	for _, c := range closed {
		risk, ok := c.trade.InitialRisk()
		if !ok {
			continue
		}
		rs = append(rs, safeDiv(c.pnl, risk.InexactFloat64()))
	}
	return computeMean(rs), len(rs)
}

// computeKelly returns the Kelly fraction p - (1-p)/b, clamped to [-1, 1],
// where b is average win over |average loss|.
// No wins yields 0; wins without losses yields 1.
func computeKelly(e domain.EssentialMetrics, closed int) float64 {
	if e.Wins == 0 || closed == 0 {
		return 0
	}
	if e.Losses == 0 {
		return 1
	}
	p := float64(e.Wins) / float64(closed)
	b := safeDiv(e.AverageWin, -e.AverageLoss)
	if b == 0 {
		return 0
	}
	return clamp(finite(p-(1-p)/b), -1, 1)
}

// computeRiskOfRuin estimates the probability of losing cfg.RuinThreshold of
// capital before doubling it.
//
// Trades are modelled as a random walk measured in average-loss units:
// a win moves +b (b = avgWin/|avgLoss|), a loss moves -1, breakeven 0.
// The walk is approximated by Brownian motion with drift mu and variance
// sigma², giving the classical two-barrier ruin probability with
// a = 2mu/sigma², starting R units above ruin and T units below target:
//
//	P(ruin) = (e^{-aR} - e^{-a(R+T)}) / (1 - e^{-a(R+T)})
//
// Capital in loss units is InitialCapital/|avgLoss|, or 1/RiskPerTrade when no
// capital is supplied. The result is clamped to [0, 1].
func computeRiskOfRuin(e domain.EssentialMetrics, closed int, cfg domain.EngineConfig) float64 {
	if closed == 0 || e.Losses == 0 {
		return 0
	}
	if e.Wins == 0 {
		return 1
	}

	avgLoss := -e.AverageLoss
	p := float64(e.Wins) / float64(closed)
	q := float64(e.Losses) / float64(closed)
	b := safeDiv(e.AverageWin, avgLoss)

	mu := p*b - q
	sigma2 := p*b*b + q - mu*mu

	capitalUnits := 1 / cfg.RiskPerTrade
	if cfg.InitialCapital > 0 {
		capitalUnits = cfg.InitialCapital / avgLoss
	}
	r := cfg.RuinThreshold * capitalUnits
	t := capitalUnits

	if sigma2 <= 0 {
		if mu < 0 {
			return 1
		}
		return 0
	}

	a := 2 * mu / sigma2
	var ruin float64
	switch {
	case math.Abs(a*(r+t)) < 1e-12:
		ruin = t / (r + t)
	case a > 0:
		// e^{-aR} (1 - e^{-aT}) / (1 - e^{-a(R+T)})
		ruin = math.Exp(-a*r) * -math.Expm1(-a*t) / -math.Expm1(-a*(r+t))
	default:
		na := -a
		// (1 - e^{-|a|T}) / (1 - e^{-|a|(R+T)})
		ruin = -math.Expm1(-na*t) / -math.Expm1(-na*(r+t))
	}
	return clamp(finite(ruin), 0, 1)
}
