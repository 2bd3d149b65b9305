package lookup

import (
	"testing"

	"github.com/shopspring/decimal"

	"trading-journal/internal/domain"
)

func sample(ts int64, price float64) *domain.PriceSample {
	return &domain.PriceSample{TradeID: "t1", TimestampMs: ts, Price: decimal.NewFromFloat(price)}
}

func ptr[T any](v T) *T {
	return &v
}

func TestPriceAt_EmptySlice(t *testing.T) {
	_, err := PriceAt(1000, nil)
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}

	_, err = PriceAt(1000, []*domain.PriceSample{})
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}
}

func TestPriceAt_ExactMatch(t *testing.T) {
	samples := []*domain.PriceSample{sample(1000, 1), sample(2000, 2), sample(3000, 3)}

	price, err := PriceAt(2000, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s", price)
	}
}

func TestPriceAt_BeforeTarget(t *testing.T) {
	samples := []*domain.PriceSample{sample(1000, 1), sample(2000, 2), sample(3000, 3)}

	// Target 2500 should return price at 2000
	price, err := PriceAt(2500, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s", price)
	}
}

func TestPriceAt_BeforeFirst(t *testing.T) {
	samples := []*domain.PriceSample{sample(1000, 1), sample(2000, 2)}

	price, err := PriceAt(500, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected first price 1, got %s", price)
	}
}

func TestSorted_StableAndDoesNotMutate(t *testing.T) {
	a := sample(2000, 1)
	b := sample(1000, 2)
	c := sample(2000, 3)
	in := []*domain.PriceSample{a, nil, b, c}

	out := Sorted(in)

	if len(out) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(out))
	}
	if out[0] != b || out[1] != a || out[2] != c {
		t.Errorf("unexpected order: %v", out)
	}
	if in[0] != a || in[2] != b {
		t.Error("input slice was reordered")
	}
}

func TestWindow_Bounds(t *testing.T) {
	samples := []*domain.PriceSample{sample(3000, 3), sample(1000, 1), sample(2000, 2), sample(4000, 4)}

	got := Window(samples, ptr(int64(2000)), ptr(int64(3000)))
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].TimestampMs != 2000 || got[1].TimestampMs != 3000 {
		t.Errorf("unexpected window: %d, %d", got[0].TimestampMs, got[1].TimestampMs)
	}
}

func TestWindow_OpenBounds(t *testing.T) {
	samples := []*domain.PriceSample{sample(3000, 3), sample(1000, 1)}

	if got := Window(samples, nil, nil); len(got) != 2 {
		t.Errorf("expected all samples, got %d", len(got))
	}
	if got := Window(samples, ptr(int64(2000)), nil); len(got) != 1 || got[0].TimestampMs != 3000 {
		t.Errorf("expected only 3000, got %v", got)
	}
}
