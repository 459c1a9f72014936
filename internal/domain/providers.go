package domain

import (
	"context"
	"time"
)

// PriceProvider fetches raw daily bars for an asset. An empty result means
// "no data for window", not an error. Implementations apply their own bounded
// timeouts; a slow provider must not stall the pipeline indefinitely.
type PriceProvider interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]RawBar, error)
}

// RateProvider fetches the multiplier converting one unit of from-currency
// into to-currency.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// MetadataProvider resolves an asset's native currency code. Callers treat
// any failure as "already in reference currency".
type MetadataProvider interface {
	GetCurrency(ctx context.Context, symbol string) (string, error)
}
