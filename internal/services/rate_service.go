package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
)

// fallbackRatesToUSD maps currency codes to an approximate USD value of one
// unit. Used when the live rate provider is unavailable.
var fallbackRatesToUSD = map[string]float64{
	"USD": 1.0,
	"EUR": 1.10,
	"GBP": 1.25,
	"JPY": 0.0067,
	"CAD": 0.74,
	"AUD": 0.65,
	"CHF": 1.12,
	"CNY": 0.14,
	"INR": 0.012,
	"KRW": 0.00075,
	"BRL": 0.20,
	"MXN": 0.055,
	"RUB": 0.011,
}

// RateService resolves exchange rates and native currencies with a tiered
// fallback chain, so a broken upstream never fails a portfolio run.
type RateService struct {
	rates       domain.RateProvider
	metadata    domain.MetadataProvider
	refCurrency string
	log         zerolog.Logger
}

// NewRateService creates a new rate service. rates and metadata are optional;
// nil providers skip straight to fallback behavior.
func NewRateService(rates domain.RateProvider, metadata domain.MetadataProvider, refCurrency string, log zerolog.Logger) *RateService {
	return &RateService{
		rates:       rates,
		metadata:    metadata,
		refCurrency: refCurrency,
		log:         log.With().Str("service", "rate").Logger(),
	}
}

// ReferenceCurrency returns the configured reporting currency.
func (s *RateService) ReferenceCurrency() string {
	return s.refCurrency
}

// Rate returns the multiplier converting from→to. Resolution order:
// 1. Identity when the currencies match
// 2. Live provider (cached exchangerate-api client)
// 3. Static cross rate composed through USD
// 4. 1.0 identity, logged as a warning
// Rate never fails; the last tier always produces a usable number.
func (s *RateService) Rate(ctx context.Context, from, to string) float64 {
	if from == to {
		return 1.0
	}

	if s.rates != nil {
		rate, err := s.rates.GetRate(ctx, from, to)
		if err == nil && rate > 0 {
			s.log.Debug().
				Str("from", from).
				Str("to", to).
				Float64("rate", rate).
				Str("source", "provider").
				Msg("Got live rate")
			return rate
		}
		if err != nil {
			s.log.Warn().Err(err).
				Str("from", from).
				Str("to", to).
				Msg("Live rate fetch failed, trying static rates")
		}
	}

	if rate, ok := s.staticRate(from, to); ok {
		s.log.Warn().
			Str("from", from).
			Str("to", to).
			Float64("rate", rate).
			Str("source", "static").
			Msg("Using static fallback rate")
		return rate
	}

	s.log.Warn().
		Str("from", from).
		Str("to", to).
		Msg("No rate available, using identity")
	return 1.0
}

// staticRate composes from→to through USD using the static table.
func (s *RateService) staticRate(from, to string) (float64, bool) {
	fromUSD, okFrom := fallbackRatesToUSD[from]
	toUSD, okTo := fallbackRatesToUSD[to]
	if !okFrom || !okTo || toUSD == 0 {
		return 0, false
	}
	return fromUSD / toUSD, true
}

// ResolveCurrency returns the instrument's native currency, defaulting to the
// reference currency when metadata is unavailable.
func (s *RateService) ResolveCurrency(ctx context.Context, symbol string) string {
	if s.metadata == nil {
		return s.refCurrency
	}

	currency, err := s.metadata.GetCurrency(ctx, symbol)
	if err != nil || currency == "" {
		s.log.Warn().Err(err).
			Str("symbol", symbol).
			Str("default", s.refCurrency).
			Msg("Currency lookup failed, using reference currency")
		return s.refCurrency
	}
	return currency
}

// SyncRates prefetches rates from every known currency into the reference
// currency, warming the provider's cache. Partial success is OK - returns the
// number of currencies refreshed.
func (s *RateService) SyncRates(ctx context.Context) int {
	if s.rates == nil {
		return 0
	}

	successCount := 0
	errorCount := 0

	for from := range fallbackRatesToUSD {
		if from == s.refCurrency {
			continue
		}

		rate, err := s.rates.GetRate(ctx, from, s.refCurrency)
		if err != nil || rate <= 0 {
			s.log.Warn().Err(err).
				Str("from", from).
				Str("to", s.refCurrency).
				Msg("Failed to refresh rate")
			errorCount++
			continue
		}
		successCount++
	}

	s.log.Info().
		Int("success", successCount).
		Int("errors", errorCount).
		Msg("Exchange rate sync completed")

	return successCount
}
