package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeRateProvider struct {
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeRateProvider) GetRate(_ context.Context, from, to string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.rates[from+":"+to], nil
}

type fakeMetadataProvider struct {
	currencies map[string]string
	err        error
}

func (f *fakeMetadataProvider) GetCurrency(_ context.Context, symbol string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.currencies[symbol], nil
}

func TestRate_SameCurrency(t *testing.T) {
	s := NewRateService(nil, nil, "USD", zerolog.Nop())

	for _, c := range []string{"USD", "EUR", "XYZ"} {
		assert.Equal(t, 1.0, s.Rate(context.Background(), c, c))
	}
}

func TestRate_LiveProvider(t *testing.T) {
	provider := &fakeRateProvider{rates: map[string]float64{"EUR:USD": 1.0842}}
	s := NewRateService(provider, nil, "USD", zerolog.Nop())

	rate := s.Rate(context.Background(), "EUR", "USD")

	assert.Equal(t, 1.0842, rate)
	assert.Equal(t, 1, provider.calls)
}

func TestRate_StaticFallbackOnProviderError(t *testing.T) {
	provider := &fakeRateProvider{err: errors.New("api down")}
	s := NewRateService(provider, nil, "USD", zerolog.Nop())

	// Composed through USD: EUR->GBP = 1.10 / 1.25
	rate := s.Rate(context.Background(), "EUR", "GBP")

	assert.InDelta(t, 1.10/1.25, rate, 1e-12)
}

func TestRate_StaticFallbackWithoutProvider(t *testing.T) {
	s := NewRateService(nil, nil, "USD", zerolog.Nop())

	assert.InDelta(t, 1.10, s.Rate(context.Background(), "EUR", "USD"), 1e-12)
	assert.InDelta(t, 1/1.25, s.Rate(context.Background(), "USD", "GBP"), 1e-12)
}

func TestRate_UnknownCurrencyIdentity(t *testing.T) {
	provider := &fakeRateProvider{err: errors.New("api down")}
	s := NewRateService(provider, nil, "USD", zerolog.Nop())

	// Last resort: never fail, return identity.
	assert.Equal(t, 1.0, s.Rate(context.Background(), "ZZZ", "USD"))
}

func TestResolveCurrency(t *testing.T) {
	metadata := &fakeMetadataProvider{currencies: map[string]string{"SAP.DE": "EUR"}}
	s := NewRateService(nil, metadata, "USD", zerolog.Nop())

	assert.Equal(t, "EUR", s.ResolveCurrency(context.Background(), "SAP.DE"))
}

func TestResolveCurrency_DefaultsToReference(t *testing.T) {
	s := NewRateService(nil, nil, "USD", zerolog.Nop())
	assert.Equal(t, "USD", s.ResolveCurrency(context.Background(), "AAPL"))

	failing := NewRateService(nil, &fakeMetadataProvider{err: errors.New("boom")}, "USD", zerolog.Nop())
	assert.Equal(t, "USD", failing.ResolveCurrency(context.Background(), "AAPL"))

	empty := NewRateService(nil, &fakeMetadataProvider{currencies: map[string]string{}}, "USD", zerolog.Nop())
	assert.Equal(t, "USD", empty.ResolveCurrency(context.Background(), "AAPL"))
}

func TestSyncRates_CountsSuccesses(t *testing.T) {
	provider := &fakeRateProvider{rates: map[string]float64{
		"EUR:USD": 1.08,
		"GBP:USD": 1.27,
	}}
	s := NewRateService(provider, nil, "USD", zerolog.Nop())

	refreshed := s.SyncRates(context.Background())

	// Only the pairs the provider knows come back positive.
	assert.Equal(t, 2, refreshed)
	// The reference currency itself is skipped.
	assert.Equal(t, len(fallbackRatesToUSD)-1, provider.calls)
}

func TestSyncRates_NoProvider(t *testing.T) {
	s := NewRateService(nil, nil, "USD", zerolog.Nop())
	assert.Equal(t, 0, s.SyncRates(context.Background()))
}
