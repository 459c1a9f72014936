// Package series normalizes raw provider bars into clean daily close series.
package series

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
)

// Normalizer turns raw bars into validated close-price series.
type Normalizer struct {
	log zerolog.Logger
}

// NewNormalizer creates a new normalizer.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{
		log: log.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize builds a clean close-price series for symbol from raw bars:
// rows with any missing price field or a non-positive close are dropped,
// dates are truncated to UTC midnight, duplicates collapse to the last
// observation, and the result is sorted ascending. Returns ErrNoData when
// nothing survives.
func (n *Normalizer) Normalize(symbol, currency string, bars []domain.RawBar) (domain.AssetSeries, error) {
	byDate := make(map[time.Time]float64, len(bars))
	for _, bar := range bars {
		if hasMissingField(bar) || bar.Close <= 0 {
			continue
		}
		day := bar.Date.UTC().Truncate(24 * time.Hour)
		byDate[day] = bar.Close
	}

	if len(byDate) == 0 {
		n.log.Debug().Str("symbol", symbol).Int("raw_bars", len(bars)).Msg("No usable bars")
		return domain.AssetSeries{}, domain.ErrNoData
	}

	points := make([]domain.PricePoint, 0, len(byDate))
	for day, close := range byDate {
		points = append(points, domain.PricePoint{Date: day, Close: close})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	dropped := len(bars) - len(points)
	if dropped > 0 {
		n.log.Debug().
			Str("symbol", symbol).
			Int("dropped", dropped).
			Int("kept", len(points)).
			Msg("Dropped unusable bars")
	}

	return domain.AssetSeries{
		Symbol:   symbol,
		Currency: currency,
		Points:   points,
	}, nil
}

// hasMissingField reports whether any price field of the bar is NaN. A bar
// with a partial observation is unusable as a whole, matching a row-wise
// dropna over the provider frame.
func hasMissingField(bar domain.RawBar) bool {
	return math.IsNaN(bar.Open) ||
		math.IsNaN(bar.High) ||
		math.IsNaN(bar.Low) ||
		math.IsNaN(bar.Close) ||
		math.IsNaN(bar.AdjClose)
}

// ToReferenceCurrency scales every close by rate and relabels the series
// with the reference currency. A rate of 1 still copies, so callers can
// mutate the result freely.
func (n *Normalizer) ToReferenceCurrency(s domain.AssetSeries, rate float64, refCurrency string) domain.AssetSeries {
	points := make([]domain.PricePoint, len(s.Points))
	for i, p := range s.Points {
		points[i] = domain.PricePoint{Date: p.Date, Close: p.Close * rate}
	}
	return domain.AssetSeries{
		Symbol:   s.Symbol,
		Currency: refCurrency,
		Points:   points,
	}
}
