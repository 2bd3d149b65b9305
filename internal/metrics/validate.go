package metrics

import (
	"fmt"

	"trading-journal/internal/domain"
)

// Policy controls how ValidateTrades treats invalid records.
type Policy int

// Policy constants
const (
	// RejectBatch fails the whole batch on the first invalid trade.
	RejectBatch Policy = iota
	// ExcludeInvalid drops invalid trades and reports them as rejections.
	ExcludeInvalid
)

// Rejection records one trade dropped by ExcludeInvalid.
type Rejection struct {
	Index   int
	TradeID string
	Err     error
}

// ValidateTrades runs domain.ValidateTrade over every trade.
// Under RejectBatch the first failure is returned wrapped with its index; it
// still matches domain.ErrInvalidTradeRecord via errors.Is.
// Under ExcludeInvalid the valid trades are returned together with the rejections.
// The input slice is never modified.
func ValidateTrades(trades []*domain.Trade, policy Policy) ([]*domain.Trade, []Rejection, error) {
	valid := make([]*domain.Trade, 0, len(trades))
	var rejected []Rejection

	for i, t := range trades {
		err := domain.ValidateTrade(t)
		if err == nil {
			valid = append(valid, t)
			continue
		}
		if policy == RejectBatch {
			return nil, nil, fmt.Errorf("trade %d: %w", i, err)
		}
		r := Rejection{Index: i, Err: err}
		if t != nil {
			r.TradeID = t.TradeID
		}
		rejected = append(rejected, r)
	}
	return valid, rejected, nil
}
