package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/metrics"
	"trading-journal/internal/storage/memory"
)

func ptr[T any](v T) *T {
	return &v
}

func trade(id, symbol, entry, exit, qty string, exitMs int64) *domain.Trade {
	t := &domain.Trade{
		TradeID:     id,
		UserID:      "u1",
		Symbol:      symbol,
		Direction:   domain.DirectionLong,
		EntryPrice:  decimal.RequireFromString(entry),
		Quantity:    decimal.RequireFromString(qty),
		EntryTimeMs: ptr(exitMs - 1000),
		ExitTimeMs:  ptr(exitMs),
	}
	if exit != "" {
		t.ExitPrice = decimal.NewNullDecimal(decimal.RequireFromString(exit))
	} else {
		t.ExitTimeMs = nil
	}
	return t
}

func setupGenerator(t *testing.T, withSamples bool, trades ...*domain.Trade) *Generator {
	t.Helper()
	ctx := context.Background()

	tradeStore := memory.NewTradeStore()
	for i, tr := range trades {
		tr.CreatedAtMs = int64(i + 1)
		if err := tradeStore.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert trade failed: %v", err)
		}
	}

	var sampleStore *memory.PriceSampleStore
	if withSamples {
		sampleStore = memory.NewPriceSampleStore()
		err := sampleStore.InsertBulk(ctx, []*domain.PriceSample{
			{TradeID: "t1", TimestampMs: 1000, Price: decimal.RequireFromString("95")},
			{TradeID: "t1", TimestampMs: 1500, Price: decimal.RequireFromString("115")},
		})
		if err != nil {
			t.Fatalf("Insert samples failed: %v", err)
		}
	}

	var agg *metrics.Aggregator
	if sampleStore != nil {
		agg = metrics.NewAggregator(tradeStore, sampleStore, memory.NewMetricSnapshotStore(), zap.NewNop())
	} else {
		agg = metrics.NewAggregator(tradeStore, nil, memory.NewMetricSnapshotStore(), zap.NewNop())
	}

	fixed := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	return NewGenerator(agg, benchmark.Default()).WithClock(func() time.Time { return fixed })
}

func TestGenerate(t *testing.T) {
	bad := trade("bad", "AAPL", "10", "11", "1", 5000)
	bad.Quantity = decimal.Zero

	g := setupGenerator(t, true,
		trade("t1", "AAPL", "100", "110", "1", 2000),
		trade("t2", "MSFT", "50", "40", "2", 3000),
		trade("t3", "AAPL", "20", "", "1", 4000),
		bad,
	)

	cfg := domain.DefaultEngineConfig()
	cfg.InitialCapital = 1000

	r, err := g.Generate(context.Background(), "u1", "", cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if r.Preset != benchmark.DefaultPreset {
		t.Errorf("expected default preset, got %s", r.Preset)
	}
	if r.Summary.TotalTrades != 3 || r.Summary.ClosedTrades != 2 || r.Summary.OpenTrades != 1 {
		t.Errorf("unexpected summary counts: %+v", r.Summary)
	}
	if r.Summary.Symbols != 2 {
		t.Errorf("expected 2 symbols, got %d", r.Summary.Symbols)
	}
	if r.Summary.DateRangeStart == nil || *r.Summary.DateRangeStart != 1000 {
		t.Errorf("unexpected date range start: %v", r.Summary.DateRangeStart)
	}
	if r.Summary.DateRangeEnd == nil || *r.Summary.DateRangeEnd != 3000 {
		t.Errorf("unexpected date range end: %v", r.Summary.DateRangeEnd)
	}
	if len(r.Drawdown) != 2 {
		t.Fatalf("expected 2 drawdown points, got %d", len(r.Drawdown))
	}
	if !r.Drawdown[1].InDrawdown {
		t.Error("expected second point in drawdown")
	}
	if r.Excursions == nil || r.Excursions.TradesAnalyzed != 1 {
		t.Errorf("expected excursions over one trade, got %+v", r.Excursions)
	}
	if len(r.Rejected) != 1 || r.Rejected[0].TradeID != "bad" {
		t.Errorf("expected bad trade rejected, got %+v", r.Rejected)
	}
	if r.Assessment == nil || len(r.Results) == 0 {
		t.Fatal("expected classified results and an assessment")
	}
}

func TestGenerate_UnknownPreset(t *testing.T) {
	g := setupGenerator(t, false, trade("t1", "AAPL", "100", "110", "1", 2000))

	_, err := g.Generate(context.Background(), "u1", "nope", domain.DefaultEngineConfig())
	if !errors.Is(err, benchmark.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestGenerate_NoSampleStore(t *testing.T) {
	g := setupGenerator(t, false, trade("t1", "AAPL", "100", "110", "1", 2000))

	r, err := g.Generate(context.Background(), "u1", "conservative", domain.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if r.Excursions != nil {
		t.Error("expected no excursion stats without a sample store")
	}
	if strings.Contains(RenderMarkdown(r), "## Excursions") {
		t.Error("markdown should omit excursions section")
	}
}

func TestRenderMarkdown(t *testing.T) {
	g := setupGenerator(t, true,
		trade("t1", "AAPL", "100", "110", "1", 2000),
		trade("t2", "MSFT", "50", "40", "2", 3000),
	)
	cfg := domain.DefaultEngineConfig()
	cfg.InitialCapital = 1000

	r, err := g.Generate(context.Background(), "u1", "", cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(r)
	for _, want := range []string{
		"# Trading Performance Report",
		"Generated: 2026-01-15T12:00:00Z",
		"User: u1 | Benchmark preset: default",
		"| Closed Trades | 2 |",
		"## Assessment:",
		"| 1 | t1 | 1010.00 | 1010.00 | 0.00% |",
		"| 2 | t2 | 990.00 | 1010.00 | 1.98% |",
		"## Excursions",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	up := domain.TrendUp
	results := []domain.MetricResult{
		{ID: "jensens_alpha", Label: "Jensen's alpha, annualized", Value: 0.0123, Status: domain.StatusGood, Format: domain.FormatPercentage, Trend: &up},
		{ID: "win_rate", Label: "Win rate", Value: 0.5, Status: domain.StatusWarning, Format: domain.FormatPercentage},
	}

	csv := RenderCSV(results)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}
	if lines[0] != "metric_id,label,value,status,trend,format" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != `jensens_alpha,"Jensen's alpha, annualized",0.012300,good,up,percentage` {
		t.Errorf("unexpected row: %s", lines[1])
	}
	if lines[2] != "win_rate,Win rate,0.500000,warning,,percentage" {
		t.Errorf("unexpected row: %s", lines[2])
	}
}

func TestRenderDrawdownCSV(t *testing.T) {
	points := []domain.DrawdownPoint{
		{Index: 0, TradeID: "t1", TimestampMs: ptr(int64(2000)), Value: 1010, Peak: 1010},
		{Index: 1, TradeID: "t2", Value: 990, Peak: 1010, Drawdown: 0.0198, InDrawdown: true},
	}

	csv := RenderDrawdownCSV(points)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}
	if lines[1] != "0,t1,2000,1010.000000,1010.000000,0.000000,false" {
		t.Errorf("unexpected row: %s", lines[1])
	}
	if lines[2] != "1,t2,,990.000000,1010.000000,0.019800,true" {
		t.Errorf("unexpected row: %s", lines[2])
	}
}
