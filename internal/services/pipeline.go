package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
	"github.com/vantagefin/vantage/internal/modules/display"
	"github.com/vantagefin/vantage/internal/modules/portfolio"
	"github.com/vantagefin/vantage/internal/modules/risk"
	"github.com/vantagefin/vantage/internal/modules/series"
)

// Pipeline runs one full analytics pass: fetch, normalize, convert,
// aggregate, and compute risk metrics. It is stateless between runs; every
// invocation is independent.
type Pipeline struct {
	prices          domain.PriceProvider
	rates           *RateService
	normalizer      *series.Normalizer
	aggregator      *portfolio.Aggregator
	analytics       *risk.Analytics
	riskFreeRatePct float64
	log             zerolog.Logger
}

// NewPipeline creates a new analytics pipeline. riskFreeRatePct is the
// annual risk-free rate (percent) applied when a request does not carry one;
// zero falls back to domain.DefaultRiskFreeRatePct.
func NewPipeline(
	prices domain.PriceProvider,
	rates *RateService,
	normalizer *series.Normalizer,
	aggregator *portfolio.Aggregator,
	analytics *risk.Analytics,
	riskFreeRatePct float64,
	log zerolog.Logger,
) *Pipeline {
	if riskFreeRatePct == 0 {
		riskFreeRatePct = domain.DefaultRiskFreeRatePct
	}
	return &Pipeline{
		prices:          prices,
		rates:           rates,
		normalizer:      normalizer,
		aggregator:      aggregator,
		analytics:       analytics,
		riskFreeRatePct: riskFreeRatePct,
		log:             log.With().Str("service", "pipeline").Logger(),
	}
}

// Analyze executes the pipeline for one request. Failures for individual
// assets degrade to warnings; only an empty symbol set is an error.
func (p *Pipeline) Analyze(ctx context.Context, req domain.PortfolioRequest) (*domain.PortfolioResult, error) {
	if len(req.Symbols) == 0 {
		return nil, domain.ErrNoAssets
	}

	start, end := clampWindow(req.Start, req.End)
	sharpeStart, sharpeEnd := req.SharpeStart, req.SharpeEnd
	if sharpeStart.IsZero() {
		sharpeStart = start
	}
	if sharpeEnd.IsZero() {
		sharpeEnd = end
	}
	sharpeStart, sharpeEnd = clampWindow(sharpeStart, sharpeEnd)

	riskFree := req.RiskFreeRatePct
	if riskFree == 0 {
		riskFree = p.riskFreeRatePct
	}

	refCurrency := p.rates.ReferenceCurrency()
	result := &domain.PortfolioResult{
		RunID:             uuid.NewString(),
		ReferenceCurrency: refCurrency,
		Start:             start,
		End:               end,
		Series:            make(map[string]domain.AssetSeries),
	}

	log := p.log.With().Str("run_id", result.RunID).Logger()
	log.Info().
		Strs("symbols", req.Symbols).
		Time("start", start).
		Time("end", end).
		Msg("Starting portfolio analysis")

	alloc := make(domain.Allocation)
	included := make([]string, 0, len(req.Symbols))

	for _, symbol := range req.Symbols {
		investment, ok := req.Investments[symbol]
		if !ok {
			investment = domain.DefaultInvestment
		}

		currency := p.rates.ResolveCurrency(ctx, symbol)
		rate := p.rates.Rate(ctx, currency, refCurrency)

		bars, err := p.prices.GetDailyBars(ctx, symbol, start, end)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Price fetch failed, skipping asset")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: price fetch failed", symbol))
			continue
		}

		native, err := p.normalizer.Normalize(symbol, currency, bars)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				log.Warn().Str("symbol", symbol).Msg("No data for selected timeframe, skipping asset")
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no data available for selected timeframe", symbol))
				continue
			}
			return nil, fmt.Errorf("failed to normalize %s: %w", symbol, err)
		}

		refSeries := p.normalizer.ToReferenceCurrency(native, rate, refCurrency)
		result.Series[symbol] = refSeries

		snapshot := domain.AssetSnapshot{
			Symbol:           symbol,
			Currency:         currency,
			Rate:             rate,
			Investment:       investment,
			InvestmentNative: safeDiv(investment, rate),
		}

		n := native.Len()
		snapshot.CurrentPrice = native.Points[n-1].Close
		snapshot.CurrentPriceRef = refSeries.Points[n-1].Close
		if change := dayChangePct(native.Closes()); change != nil {
			snapshot.DayChangePct = change
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: day change undefined", symbol))
		}

		sharpeCloses := refSeries.Window(sharpeStart, sharpeEnd).Closes()
		if value, err := p.analytics.SharpeRatio(sharpeCloses, riskFree); err == nil {
			snapshot.Sharpe = &domain.SharpeResult{Value: value, Bucket: risk.SharpeBucketFor(value)}
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: sharpe undefined", symbol))
		}

		result.Assets = append(result.Assets, snapshot)
		alloc[symbol] = investment
		included = append(included, symbol)
	}

	result.TotalInvestment = alloc.Total()

	if len(included) == 0 {
		log.Warn().Msg("No assets produced data")
		return result, nil
	}

	result.Portfolio = p.aggregator.Aggregate(result.Series, alloc, refCurrency)
	portfolioCloses := result.Portfolio.Closes()
	result.PortfolioChangePct = dayChangePct(portfolioCloses)
	result.ReturnsPerDollar = returnsPerDollar(portfolioCloses)

	if profile, err := p.analytics.ValueAtRisk(portfolioCloses); err == nil {
		result.VaR = profile
		result.VaRNarrative = display.VarNarrative(profile)
	} else {
		result.Warnings = append(result.Warnings, "portfolio: value at risk undefined")
	}

	sharpeCloses := result.Portfolio.Window(sharpeStart, sharpeEnd).Closes()
	if value, err := p.analytics.SharpeRatio(sharpeCloses, riskFree); err == nil {
		result.PortfolioSharpe = &domain.SharpeResult{Value: value, Bucket: risk.SharpeBucketFor(value)}
	} else {
		result.Warnings = append(result.Warnings, "portfolio: sharpe undefined")
	}

	if len(included) >= 2 {
		sort.Strings(included)
		matrix := p.analytics.CorrelationMatrix(result.Series, included)
		result.Correlation = &matrix

		avg := risk.AverageCorrelation(matrix)
		result.Diversification = risk.DiversificationBucketFor(avg)
		if !math.IsNaN(avg) {
			result.AvgCorrelation = &avg
		} else {
			result.Warnings = append(result.Warnings, "portfolio: correlation undefined, not enough overlapping data")
		}
	}

	log.Info().
		Int("assets", len(included)).
		Int("warnings", len(result.Warnings)).
		Msg("Portfolio analysis completed")

	return result, nil
}

// clampWindow bounds [start, end] to [MinWindowStart, today] and repairs
// inverted or zero inputs.
func clampWindow(start, end time.Time) (time.Time, time.Time) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	if end.IsZero() || end.After(today) {
		end = today
	}
	if start.IsZero() || start.Before(domain.MinWindowStart) {
		start = domain.MinWindowStart
	}
	if start.After(end) {
		start = end
	}
	return start, end
}

// dayChangePct returns the percent change of the last close relative to the
// previous close, or nil when fewer than two observations exist.
func dayChangePct(closes []float64) *float64 {
	n := len(closes)
	if n < 2 || closes[n-2] == 0 {
		return nil
	}
	change := (closes[n-1] - closes[n-2]) / closes[n-2] * 100
	return &change
}

// returnsPerDollar returns the ratio of the last close to the first, the
// end-of-window value of one unit invested at the start. Nil with fewer than
// two observations or a zero starting value.
func returnsPerDollar(closes []float64) *float64 {
	if len(closes) < 2 || closes[0] == 0 {
		return nil
	}
	ratio := closes[len(closes)-1] / closes[0]
	return &ratio
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
