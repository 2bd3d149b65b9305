// Package fixtures seeds a demo journal for local runs and the report CLI.
package fixtures

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"trading-journal/internal/domain"
	"trading-journal/internal/idhash"
	"trading-journal/internal/storage"
)

// DemoUserID owns every fixture trade.
const DemoUserID = "demo"

const (
	day       = int64(86_400_000)
	hour      = int64(3_600_000)
	baseMs    = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	demoAcct  = "demo-mt5"
	demoMagic = int64(20240101)
)

type demoTrade struct {
	id        string
	symbol    string
	market    domain.MarketType
	dir       domain.Direction
	entry     string
	exit      string // empty = open
	qty       string
	stop      string
	fees      string
	dayOffset int64
	holdHours int64
	ticket    string // broker-imported when set
}

var demoTrades = []demoTrade{
	{"fx_001", "EURUSD", domain.MarketForex, domain.DirectionLong, "1.0950", "1.1010", "10000", "1.0920", "3.5", 1, 6, ""},
	{"fx_002", "GBPUSD", domain.MarketForex, domain.DirectionShort, "1.2740", "1.2780", "10000", "1.2770", "3.5", 2, 4, ""},
	{"cr_001", "BTCUSD", domain.MarketCrypto, domain.DirectionLong, "42000", "43800", "0.1", "41000", "8", 3, 20, ""},
	{"st_001", "AAPL", domain.MarketStocks, domain.DirectionLong, "185.20", "183.10", "50", "183.00", "1", 4, 5, ""},
	{"mt_001", "XAUUSD", domain.MarketForex, domain.DirectionShort, "2065.0", "2041.5", "1", "2075.0", "2.2", 8, 9, "90001"},
	{"fx_003", "USDJPY", domain.MarketForex, domain.DirectionLong, "141.80", "142.55", "1000", "", "0.9", 9, 12, ""},
	{"cr_002", "ETHUSD", domain.MarketCrypto, domain.DirectionShort, "2350", "2410", "1", "2400", "2.4", 10, 30, ""},
	{"fu_001", "ES", domain.MarketFutures, domain.DirectionLong, "4750", "4790", "1", "4730", "4.5", 15, 3, ""},
	{"mt_002", "EURUSD", domain.MarketForex, domain.DirectionLong, "1.0890", "1.0935", "10000", "1.0870", "3.5", 16, 7, "90002"},
	{"st_002", "MSFT", domain.MarketStocks, domain.DirectionLong, "375.00", "", "20", "368.00", "1", 17, 0, ""},
}

// Trades returns the demo trades. IDs are stable across calls.
func Trades() []*domain.Trade {
	out := make([]*domain.Trade, len(demoTrades))
	for i, s := range demoTrades {
		entryMs := baseMs + s.dayOffset*day
		t := &domain.Trade{
			TradeID:     s.id,
			UserID:      DemoUserID,
			Symbol:      s.symbol,
			Direction:   s.dir,
			MarketType:  s.market,
			EntryPrice:  decimal.RequireFromString(s.entry),
			Quantity:    decimal.RequireFromString(s.qty),
			Fees:        decimal.RequireFromString(s.fees),
			EntryTimeMs: &entryMs,
			CreatedAtMs: entryMs,
		}
		if s.exit != "" {
			exitMs := entryMs + s.holdHours*hour
			t.ExitPrice = decimal.NewNullDecimal(decimal.RequireFromString(s.exit))
			t.ExitTimeMs = &exitMs
		}
		if s.stop != "" {
			t.StopLoss = decimal.NewNullDecimal(decimal.RequireFromString(s.stop))
		}
		if s.ticket != "" {
			magic := demoMagic
			t.AccountID = demoAcct
			t.Broker = &domain.BrokerMetadata{Platform: domain.PlatformMT5, Ticket: s.ticket, Magic: &magic}
			t.TradeID = idhash.ComputeTradeID(DemoUserID, demoAcct, domain.PlatformMT5, s.ticket)
		}
		out[i] = t
	}
	return out
}

// PriceSamples returns hourly samples for the trades that have a recorded path.
func PriceSamples(trades []*domain.Trade) []*domain.PriceSample {
	paths := map[string][]string{
		"cr_001": {"42000", "41650", "41400", "42300", "43100", "44250", "43800"},
		"st_001": {"185.20", "186.10", "184.50", "183.60", "183.10"},
		"st_002": {"375.00", "372.40", "377.90", "379.10"},
	}

	var out []*domain.PriceSample
	for _, t := range trades {
		path, ok := paths[t.TradeID]
		if !ok || t.EntryTimeMs == nil {
			continue
		}
		for i, p := range path {
			out = append(out, &domain.PriceSample{
				TradeID:     t.TradeID,
				TimestampMs: *t.EntryTimeMs + int64(i)*hour,
				Price:       decimal.RequireFromString(p),
			})
		}
	}
	return out
}

// Load seeds the demo journal. samples may be nil.
func Load(ctx context.Context, trades storage.TradeStore, samples storage.PriceSampleStore) error {
	demo := Trades()
	if err := trades.InsertBulk(ctx, demo); err != nil {
		return fmt.Errorf("load fixture trades: %w", err)
	}
	if samples == nil {
		return nil
	}
	if err := samples.InsertBulk(ctx, PriceSamples(demo)); err != nil {
		return fmt.Errorf("load fixture samples: %w", err)
	}
	return nil
}
