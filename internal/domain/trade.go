package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the side of a position.
type Direction string

// Direction constants
const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection maps user and broker spellings onto a Direction.
// BUY/SELL are accepted as aliases for LONG/SHORT.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return DirectionLong, true
	case "SHORT", "SELL":
		return DirectionShort, true
	default:
		return "", false
	}
}

// Sign returns +1 for long and -1 for short positions, 0 if unknown.
func (d Direction) Sign() int64 {
	switch d {
	case DirectionLong:
		return 1
	case DirectionShort:
		return -1
	default:
		return 0
	}
}

// MarketType tags the asset class a trade was made in.
type MarketType string

// Market type constants. Empty means unknown.
const (
	MarketForex   MarketType = "FOREX"
	MarketCrypto  MarketType = "CRYPTO"
	MarketStocks  MarketType = "STOCKS"
	MarketFutures MarketType = "FUTURES"
	MarketOptions MarketType = "OPTIONS"
)

// Broker platforms a trade can be imported from.
const (
	PlatformMT4     = "MT4"
	PlatformMT5     = "MT5"
	PlatformCTrader = "CTRADER"
	PlatformOAuth   = "OAUTH"
)

// BrokerMetadata holds broker-specific fields of an imported trade.
// A nil *BrokerMetadata on a Trade means the trade was entered manually.
type BrokerMetadata struct {
	Platform string // MT4 | MT5 | CTRADER | OAUTH
	Ticket   string // broker order/position ticket, empty if unknown
	Magic    *int64 // expert advisor magic number (MetaTrader only)
}

// Trade is a journal entry. Corresponds to the trades table.
type Trade struct {
	TradeID   string
	UserID    string
	AccountID string // linked broker account, empty for manual entries

	Symbol     string
	Direction  Direction
	MarketType MarketType

	EntryPrice decimal.Decimal
	ExitPrice  decimal.NullDecimal // !Valid = position still open
	Quantity   decimal.Decimal
	StopLoss   decimal.NullDecimal // defines the initial risk unit when set
	TakeProfit decimal.NullDecimal
	Fees       decimal.Decimal // commissions + swaps, zero when unknown

	EntryTimeMs *int64 // optional
	ExitTimeMs  *int64 // optional

	Notes  string
	Broker *BrokerMetadata

	CreatedAtMs int64 // journal insertion time, defines list order
}

// IsClosed reports whether the trade has an exit price.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice.Valid
}

// PnL returns realized profit and loss:
// (exit - entry) * quantity * sign(direction) - fees.
// Returns (0, false) for open trades.
func (t *Trade) PnL() (decimal.Decimal, bool) {
	if !t.ExitPrice.Valid {
		return decimal.Zero, false
	}
	gross := t.ExitPrice.Decimal.Sub(t.EntryPrice).
		Mul(t.Quantity).
		Mul(decimal.NewFromInt(t.Direction.Sign()))
	return gross.Sub(t.Fees), true
}

// UnrealizedPnL returns the P&L the position would have at the given price, before fees.
func (t *Trade) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(t.EntryPrice).
		Mul(t.Quantity).
		Mul(decimal.NewFromInt(t.Direction.Sign()))
}

// Notional returns entry price * quantity.
func (t *Trade) Notional() decimal.Decimal {
	return t.EntryPrice.Mul(t.Quantity)
}

// InitialRisk returns |entry - stop| * quantity.
// Returns (0, false) when no stop loss is set or the stop sits at entry.
func (t *Trade) InitialRisk() (decimal.Decimal, bool) {
	if !t.StopLoss.Valid {
		return decimal.Zero, false
	}
	risk := t.EntryPrice.Sub(t.StopLoss.Decimal).Abs().Mul(t.Quantity)
	if risk.IsZero() {
		return decimal.Zero, false
	}
	return risk, true
}

// OrderTimeMs returns the timestamp that places the trade on the equity curve:
// exit time, falling back to entry time.
func (t *Trade) OrderTimeMs() (int64, bool) {
	if t.ExitTimeMs != nil {
		return *t.ExitTimeMs, true
	}
	if t.EntryTimeMs != nil {
		return *t.EntryTimeMs, true
	}
	return 0, false
}
