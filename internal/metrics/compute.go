package metrics

import (
	"math"
	"sort"

	"trading-journal/internal/domain"
)

// epsilon guards the drawdown denominator when the running peak is zero.
const epsilon = 1e-9

// closedTrade is a closed trade with its realized P&L resolved to float64.
type closedTrade struct {
	trade *domain.Trade
	pnl   float64
	key   int64 // ordering key on the equity curve
}

// orderClosedTrades returns the closed trades in equity-curve order.
// Trades are sorted stably by exit time, falling back to entry time.
// A trade with neither timestamp inherits the key of the previous timed trade
// in input order, so untimed trades keep their relative position.
// The input slice is not modified.
func orderClosedTrades(trades []*domain.Trade) []closedTrade {
	closed := make([]closedTrade, 0, len(trades))
	prevKey := int64(math.MinInt64)

	for _, t := range trades {
		if t == nil {
			continue
		}
		pnl, ok := t.PnL()
		if !ok {
			continue
		}
		key, timed := t.OrderTimeMs()
		if timed {
			prevKey = key
		} else {
			key = prevKey
		}
		closed = append(closed, closedTrade{trade: t, pnl: pnl.InexactFloat64(), key: key})
	}

	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].key < closed[j].key
	})
	return closed
}

// pnls extracts P&L values in order.
func pnls(closed []closedTrade) []float64 {
	out := make([]float64, len(closed))
	for i, c := range closed {
		out[i] = c.pnl
	}
	return out
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeCovariance calculates sample covariance of two equal-length series.
func computeCovariance(x, y []float64) float64 {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0
	}
	mx, my := computeMean(x), computeMean(y)
	sum := 0.0
	for i := range x {
		sum += (x[i] - mx) * (y[i] - my)
	}
	return sum / float64(n-1)
}

// safeDiv returns num/den, or 0 when den is zero or the result is not finite.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}

// finite maps NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
