package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTradeRecord is returned when a trade violates a record invariant.
var ErrInvalidTradeRecord = errors.New("invalid trade record")

// TradeError describes why a single trade was rejected.
type TradeError struct {
	TradeID string
	Field   string
	Reason  string
}

func (e *TradeError) Error() string {
	if e.TradeID == "" {
		return fmt.Sprintf("invalid trade record: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid trade record %s: %s %s", e.TradeID, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidTradeRecord.
func (e *TradeError) Unwrap() error {
	return ErrInvalidTradeRecord
}

// ValidateTrade checks record invariants:
// entry price > 0, quantity > 0, known direction, non-empty symbol,
// exit price and stop loss > 0 when present, fees >= 0,
// exit time not before entry time.
func ValidateTrade(t *Trade) error {
	if t == nil {
		return &TradeError{Field: "trade", Reason: "is nil"}
	}

	fail := func(field, reason string) error {
		return &TradeError{TradeID: t.TradeID, Field: field, Reason: reason}
	}

	if strings.TrimSpace(t.Symbol) == "" {
		return fail("symbol", "is empty")
	}
	if t.Direction.Sign() == 0 {
		return fail("direction", fmt.Sprintf("%q is not LONG or SHORT", t.Direction))
	}
	if !t.EntryPrice.IsPositive() {
		return fail("entry_price", "must be > 0")
	}
	if !t.Quantity.IsPositive() {
		return fail("quantity", "must be > 0")
	}
	if t.ExitPrice.Valid && !t.ExitPrice.Decimal.IsPositive() {
		return fail("exit_price", "must be > 0")
	}
	if t.StopLoss.Valid && !t.StopLoss.Decimal.IsPositive() {
		return fail("stop_loss", "must be > 0")
	}
	if t.TakeProfit.Valid && !t.TakeProfit.Decimal.IsPositive() {
		return fail("take_profit", "must be > 0")
	}
	if t.Fees.IsNegative() {
		return fail("fees", "must be >= 0")
	}
	if t.EntryTimeMs != nil && t.ExitTimeMs != nil && *t.ExitTimeMs < *t.EntryTimeMs {
		return fail("exit_time", "is before entry_time")
	}
	return nil
}
