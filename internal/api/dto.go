package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trading-journal/internal/domain"
	"trading-journal/internal/idhash"
	"trading-journal/internal/metrics"
)

// Decimal fields accept JSON strings or numbers; strings keep full precision.
type tradeRequest struct {
	TradeID     string              `json:"trade_id"` // honored by stateless compute only
	AccountID   string              `json:"account_id"`
	Symbol      string              `json:"symbol"`
	Direction   string              `json:"direction"`
	MarketType  string              `json:"market_type"`
	EntryPrice  decimal.Decimal     `json:"entry_price"`
	ExitPrice   decimal.NullDecimal `json:"exit_price"`
	Quantity    decimal.Decimal     `json:"quantity"`
	StopLoss    decimal.NullDecimal `json:"stop_loss"`
	TakeProfit  decimal.NullDecimal `json:"take_profit"`
	Fees        decimal.Decimal     `json:"fees"`
	EntryTimeMs *int64              `json:"entry_time_ms"`
	ExitTimeMs  *int64              `json:"exit_time_ms"`
	Notes       string              `json:"notes"`
	Broker      *brokerRequest      `json:"broker"`
}

type brokerRequest struct {
	Platform string `json:"platform"`
	Ticket   string `json:"ticket"`
	Magic    *int64 `json:"magic"`
}

// toDomain builds a trade owned by userID.
// Broker trades with a ticket get a deterministic ID so re-imports collide;
// everything else gets a random one unless keepID is set and an ID was sent.
func (r *tradeRequest) toDomain(userID string, createdAtMs int64, keepID bool) (*domain.Trade, error) {
	dir, ok := domain.ParseDirection(r.Direction)
	if !ok {
		return nil, &domain.TradeError{Field: "direction", Reason: fmt.Sprintf("%q is not LONG or SHORT", r.Direction)}
	}

	t := &domain.Trade{
		UserID:      userID,
		AccountID:   r.AccountID,
		Symbol:      strings.TrimSpace(r.Symbol),
		Direction:   dir,
		MarketType:  domain.MarketType(strings.ToUpper(strings.TrimSpace(r.MarketType))),
		EntryPrice:  r.EntryPrice,
		ExitPrice:   r.ExitPrice,
		Quantity:    r.Quantity,
		StopLoss:    r.StopLoss,
		TakeProfit:  r.TakeProfit,
		Fees:        r.Fees,
		EntryTimeMs: r.EntryTimeMs,
		ExitTimeMs:  r.ExitTimeMs,
		Notes:       r.Notes,
		CreatedAtMs: createdAtMs,
	}

	if r.Broker != nil {
		platform := strings.ToUpper(strings.TrimSpace(r.Broker.Platform))
		switch platform {
		case domain.PlatformMT4, domain.PlatformMT5, domain.PlatformCTrader, domain.PlatformOAuth:
		default:
			return nil, &domain.TradeError{Field: "broker.platform", Reason: fmt.Sprintf("%q is not a supported platform", r.Broker.Platform)}
		}
		t.Broker = &domain.BrokerMetadata{Platform: platform, Ticket: r.Broker.Ticket, Magic: r.Broker.Magic}
	}

	switch {
	case keepID && r.TradeID != "":
		t.TradeID = r.TradeID
	case t.Broker != nil && t.Broker.Ticket != "":
		t.TradeID = idhash.ComputeTradeID(userID, r.AccountID, t.Broker.Platform, t.Broker.Ticket)
	default:
		t.TradeID = uuid.NewString()
	}

	return t, nil
}

type tradeResponse struct {
	TradeID     string              `json:"trade_id"`
	AccountID   string              `json:"account_id,omitempty"`
	Symbol      string              `json:"symbol"`
	Direction   domain.Direction    `json:"direction"`
	MarketType  domain.MarketType   `json:"market_type,omitempty"`
	EntryPrice  decimal.Decimal     `json:"entry_price"`
	ExitPrice   decimal.NullDecimal `json:"exit_price"`
	Quantity    decimal.Decimal     `json:"quantity"`
	StopLoss    decimal.NullDecimal `json:"stop_loss"`
	TakeProfit  decimal.NullDecimal `json:"take_profit"`
	Fees        decimal.Decimal     `json:"fees"`
	PnL         decimal.NullDecimal `json:"pnl"`
	EntryTimeMs *int64              `json:"entry_time_ms,omitempty"`
	ExitTimeMs  *int64              `json:"exit_time_ms,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Broker      *brokerRequest      `json:"broker,omitempty"`
	CreatedAtMs int64               `json:"created_at_ms"`
}

func newTradeResponse(t *domain.Trade) tradeResponse {
	out := tradeResponse{
		TradeID:     t.TradeID,
		AccountID:   t.AccountID,
		Symbol:      t.Symbol,
		Direction:   t.Direction,
		MarketType:  t.MarketType,
		EntryPrice:  t.EntryPrice,
		ExitPrice:   t.ExitPrice,
		Quantity:    t.Quantity,
		StopLoss:    t.StopLoss,
		TakeProfit:  t.TakeProfit,
		Fees:        t.Fees,
		EntryTimeMs: t.EntryTimeMs,
		ExitTimeMs:  t.ExitTimeMs,
		Notes:       t.Notes,
		CreatedAtMs: t.CreatedAtMs,
	}
	if pnl, ok := t.PnL(); ok {
		out.PnL = decimal.NewNullDecimal(pnl)
	}
	if t.Broker != nil {
		out.Broker = &brokerRequest{Platform: t.Broker.Platform, Ticket: t.Broker.Ticket, Magic: t.Broker.Magic}
	}
	return out
}

type sampleRequest struct {
	TimestampMs int64           `json:"timestamp_ms"`
	Price       decimal.Decimal `json:"price"`
}

type rejectionResponse struct {
	Index   int    `json:"index"`
	TradeID string `json:"trade_id,omitempty"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason"`
}

func newRejections(rs []metrics.Rejection) []rejectionResponse {
	out := make([]rejectionResponse, len(rs))
	for i, r := range rs {
		out[i] = rejectionResponse{Index: r.Index, TradeID: r.TradeID, Reason: r.Err.Error()}
		var te *domain.TradeError
		if errors.As(r.Err, &te) {
			out[i].Field = te.Field
			out[i].Reason = te.Reason
		}
	}
	return out
}

type snapshotResponse struct {
	SnapshotID   string             `json:"snapshot_id"`
	ComputedAtMs int64              `json:"computed_at_ms"`
	Metrics      *domain.AllMetrics `json:"metrics"`
}

func newSnapshotResponse(s *domain.MetricSnapshot) snapshotResponse {
	return snapshotResponse{
		SnapshotID:   s.SnapshotID,
		ComputedAtMs: s.ComputedAtMs,
		Metrics:      s.ToAllMetrics(),
	}
}
