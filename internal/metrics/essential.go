package metrics

import "trading-journal/internal/domain"

// computeEssential calculates headline statistics over closed trades.
// A trade with pnl == 0 is breakeven: it counts toward closed trades but is
// neither a win nor a loss.
func computeEssential(closed []closedTrade) domain.EssentialMetrics {
	var m domain.EssentialMetrics
	n := len(closed)
	if n == 0 {
		return m
	}

	for _, c := range closed {
		m.NetPnL += c.pnl
		switch {
		case c.pnl > 0:
			m.Wins++
			m.GrossProfit += c.pnl
			if c.pnl > m.LargestWin {
				m.LargestWin = c.pnl
			}
		case c.pnl < 0:
			m.Losses++
			m.GrossLoss += c.pnl
			if c.pnl < m.LargestLoss {
				m.LargestLoss = c.pnl
			}
		default:
			m.Breakeven++
		}
	}

	m.WinRate = float64(m.Wins) / float64(n)
	m.Expectancy = m.NetPnL / float64(n)
	if m.Wins > 0 {
		m.AverageWin = m.GrossProfit / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AverageLoss = m.GrossLoss / float64(m.Losses)
	}
	m.ProfitFactor, m.ProfitFactorUnbounded = computeProfitFactor(m.GrossProfit, m.GrossLoss)
	return m
}

// computeProfitFactor returns gross profit / |gross loss|.
// Wins without losses yield (ProfitFactorSentinel, true); no wins and no losses yield 0.
func computeProfitFactor(grossProfit, grossLoss float64) (float64, bool) {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return domain.ProfitFactorSentinel, true
		}
		return 0, false
	}
	return safeDiv(grossProfit, -grossLoss), false
}
