// Package portfolio combines normalized asset series into a weighted
// portfolio value series.
package portfolio

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
)

// Aggregator builds the combined portfolio series from per-asset series
// and their allocations.
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "aggregator").Logger(),
	}
}

// Weights converts absolute allocations to fractional weights. A zero total
// degenerates to equal weights across all symbols.
func (a *Aggregator) Weights(alloc domain.Allocation) map[string]float64 {
	weights := make(map[string]float64, len(alloc))

	total := alloc.Total()
	if total == 0 {
		if len(alloc) == 0 {
			return weights
		}
		a.log.Warn().Msg("Total allocation is zero, using equal weights")
		equal := 1.0 / float64(len(alloc))
		for symbol := range alloc {
			weights[symbol] = equal
		}
		return weights
	}

	for symbol, amount := range alloc {
		weights[symbol] = amount / total
	}
	return weights
}

// Aggregate sums weight-scaled series into a single portfolio series over
// the union of all dates. A symbol with no observation on a date
// contributes zero for that date. Symbols absent from alloc are skipped.
func (a *Aggregator) Aggregate(series map[string]domain.AssetSeries, alloc domain.Allocation, refCurrency string) domain.AssetSeries {
	weights := a.Weights(alloc)

	totals := make(map[time.Time]float64)
	for symbol, s := range series {
		weight, ok := weights[symbol]
		if !ok {
			continue
		}
		for _, p := range s.Points {
			totals[p.Date] += p.Close * weight
		}
	}

	points := make([]domain.PricePoint, 0, len(totals))
	for day, value := range totals {
		points = append(points, domain.PricePoint{Date: day, Close: value})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	a.log.Debug().
		Int("assets", len(series)).
		Int("points", len(points)).
		Msg("Aggregated portfolio series")

	return domain.AssetSeries{
		Symbol:   domain.PortfolioSymbol,
		Currency: refCurrency,
		Points:   points,
	}
}
