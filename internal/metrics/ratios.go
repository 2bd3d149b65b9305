package metrics

import (
	"fmt"
	"math"
	"time"

	"trading-journal/internal/domain"
)

// periodReturns derives the per-period return series from ordered closed trades.
//
// When every closed trade has an exit time, P&L is bucketed by exit time
// (UTC day, ISO week or calendar month per cfg.Periodicity); otherwise each
// trade is its own period.
// With InitialCapital supplied a period return is its P&L over the equity at the
// start of the period. Without capital it is the P&L over the entry notional
// of the trades closed in that period.
func periodReturns(closed []closedTrade, cfg domain.EngineConfig) []float64 {
	if len(closed) == 0 {
		return nil
	}

	bucketed := true
	for _, c := range closed {
		if c.trade.ExitTimeMs == nil {
			bucketed = false
			break
		}
	}

	var returns []float64
	equity := cfg.InitialCapital
	var (
		bucketPnL      float64
		bucketNotional float64
		bucketStart    = equity
		currentKey     string
	)

	flush := func() {
		if cfg.InitialCapital > 0 {
			returns = append(returns, safeDiv(bucketPnL, bucketStart))
		} else {
			returns = append(returns, safeDiv(bucketPnL, bucketNotional))
		}
		bucketPnL, bucketNotional = 0, 0
		bucketStart = equity
	}

	for i, c := range closed {
		if bucketed {
			key := periodKey(*c.trade.ExitTimeMs, cfg.Periodicity)
			if i > 0 && key != currentKey {
				flush()
			}
			currentKey = key
		} else if i > 0 {
			flush()
		}
		bucketPnL += c.pnl
		bucketNotional += c.trade.Notional().InexactFloat64()
		equity += c.pnl
	}
	flush()

	return returns
}

// periodKey returns the UTC bucket label for a timestamp.
func periodKey(ms int64, p domain.Periodicity) string {
	t := time.UnixMilli(ms).UTC()
	switch p {
	case domain.PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// computeRatios calculates risk-adjusted ratios over a return series.
// Fewer than cfg.MinRatioSamples returns marks the result Insufficient and
// leaves every ratio at 0. Each zero denominator resolves to 0.
func computeRatios(returns []float64, maxDrawdown float64, cfg domain.EngineConfig) domain.AdvancedRatios {
	a := domain.AdvancedRatios{Periods: len(returns)}
	if len(returns) < cfg.MinRatioSamples {
		a.Insufficient = true
		return a
	}

	periods := cfg.Periodicity.PeriodsPerYear()
	rf := cfg.RiskFreeRate / periods
	annualize := math.Sqrt(periods)

	mean := computeMean(returns)
	std := computeStddev(returns, mean)

	a.MeanReturn = mean
	a.Volatility = std
	a.AnnualizedReturn = mean * periods
	a.SharpeRatio = safeDiv(mean-rf, std) * annualize
	a.SortinoRatio = safeDiv(mean-rf, downsideDeviation(returns)) * annualize
	a.CalmarRatio = safeDiv(a.AnnualizedReturn, maxDrawdown)

	if beta, ok := computeBeta(returns, cfg.BenchmarkReturns); ok {
		n := min(len(returns), len(cfg.BenchmarkReturns))
		benchMean := computeMean(cfg.BenchmarkReturns[:n])
		portMean := computeMean(returns[:n])

		treynor := safeDiv((portMean-rf)*periods, beta)
		alpha := finite((portMean - (rf + beta*(benchMean-rf))) * periods)

		a.Beta = &beta
		a.TreynorRatio = &treynor
		a.JensensAlpha = &alpha
	}
	return a
}

// downsideDeviation is the sample std dev of negative-only returns.
func downsideDeviation(returns []float64) float64 {
	var neg []float64
	for _, r := range returns {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	return computeStddev(neg, computeMean(neg))
}

// computeBeta returns cov(r, b) / var(b) over index-aligned pairs.
// ok is false with fewer than 2 pairs or a zero-variance benchmark.
func computeBeta(returns, benchmark []float64) (float64, bool) {
	n := min(len(returns), len(benchmark))
	if n < 2 {
		return 0, false
	}
	r := returns[:n]
	b := benchmark[:n]

	variance := computeStddev(b, computeMean(b))
	variance *= variance
	if variance == 0 {
		return 0, false
	}
	beta := computeCovariance(r, b) / variance
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, false
	}
	return beta, true
}
