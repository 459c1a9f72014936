// Package domain contains the core types shared across the analytics pipeline.
// The domain layer is pure: no infrastructure dependencies, no I/O.
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// PricePoint is a single (date, closing price) observation.
// Dates are normalized to UTC midnight by the series normalizer.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// AssetSeries is an ordered closing-price series for one asset.
// Invariants (enforced by the normalizer): strictly increasing dates,
// no duplicate dates, all closes > 0. Immutable once normalized.
type AssetSeries struct {
	Symbol   string       `json:"symbol"`
	Currency string       `json:"currency"`
	Points   []PricePoint `json:"points"`
}

// Len returns the number of observations in the series.
func (s AssetSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices in date order.
func (s AssetSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Window returns the sub-series with dates in [start, end] inclusive.
func (s AssetSeries) Window(start, end time.Time) AssetSeries {
	out := AssetSeries{Symbol: s.Symbol, Currency: s.Currency}
	for _, p := range s.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// RawBar is one OHLCV record as returned by a price data provider,
// before cleaning. Missing fields are NaN.
type RawBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// Allocation maps asset symbol to a non-negative investment amount
// in the reference currency.
type Allocation map[string]float64

// Total returns the sum of all allocations.
func (a Allocation) Total() float64 {
	total := 0.0
	for _, amount := range a {
		total += amount
	}
	return total
}

// PortfolioSymbol is the symbol assigned to the aggregated portfolio series.
const PortfolioSymbol = "PORTFOLIO"

// CorrelationMatrix is the symmetric Pearson correlation matrix of daily
// returns across assets. Diagonal entries are 1 by definition. Entries for
// pairs with fewer than two overlapping observations are NaN.
type CorrelationMatrix struct {
	Symbols []string    `json:"symbols"`
	Values  [][]float64 `json:"values"`
}

// MarshalJSON renders NaN cells as null, which encoding/json cannot do for
// plain float64 values.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Symbols []string     `json:"symbols"`
		Values  [][]*float64 `json:"values"`
	}{Symbols: m.Symbols, Values: values})
}

// VarPercentiles is the canonical percentile set of the VaR profile.
var VarPercentiles = []int{1, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 99}

// VarProfile maps a confidence percentile p to the (1 - p/100) quantile of
// the daily percentage-return distribution. VaR at p=95 reads as "you will
// lose less than X% of your investment tomorrow, 95% of the time".
type VarProfile map[int]float64

// DiversificationBucket classifies the average pairwise correlation.
type DiversificationBucket string

const (
	WellDiversified       DiversificationBucket = "WELL"
	ModeratelyDiversified DiversificationBucket = "MODERATE"
	PoorlyDiversified     DiversificationBucket = "POOR"
)

// SharpeBucket classifies an annualized Sharpe ratio.
type SharpeBucket string

const (
	SharpeNeedsImprovement SharpeBucket = "NEEDS_IMPROVEMENT"
	SharpeAcceptable       SharpeBucket = "ACCEPTABLE"
	SharpeGood             SharpeBucket = "GOOD"
	SharpeExcellent        SharpeBucket = "EXCELLENT"
)

// SharpeResult is an annualized Sharpe ratio with its qualitative bucket.
type SharpeResult struct {
	Value  float64      `json:"value"`
	Bucket SharpeBucket `json:"bucket"`
}
