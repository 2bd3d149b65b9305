package lookup

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"trading-journal/internal/domain"
)

// ErrNoPriceData is returned when a lookup is made against an empty series.
var ErrNoPriceData = errors.New("no price data available")

// PriceAt returns price at or before target timestamp.
// Samples must be sorted by TimestampMs ASC.
// If no price before target, returns first available price.
// Returns ErrNoPriceData if slice is empty.
func PriceAt(target int64, samples []*domain.PriceSample) (decimal.Decimal, error) {
	if len(samples) == 0 {
		return decimal.Zero, ErrNoPriceData
	}

	// Find closest price at or before target
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].TimestampMs <= target {
			return samples[i].Price, nil
		}
	}

	return samples[0].Price, nil
}

// Sorted returns a copy of samples ordered by TimestampMs ASC.
// Samples with equal timestamps keep their input order. Nil entries are dropped.
func Sorted(samples []*domain.PriceSample) []*domain.PriceSample {
	out := make([]*domain.PriceSample, 0, len(samples))
	for _, s := range samples {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

// Window returns the samples that fall inside [fromMs, toMs], sorted by time.
// A nil bound leaves that side open.
func Window(samples []*domain.PriceSample, fromMs, toMs *int64) []*domain.PriceSample {
	sorted := Sorted(samples)
	out := sorted[:0]
	for _, s := range sorted {
		if fromMs != nil && s.TimestampMs < *fromMs {
			continue
		}
		if toMs != nil && s.TimestampMs > *toMs {
			continue
		}
		out = append(out, s)
	}
	return out
}
