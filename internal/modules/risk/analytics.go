// Package risk computes return-based risk metrics: value at risk profiles,
// Sharpe ratios, and cross-asset correlation.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/vantagefin/vantage/internal/domain"
)

// TradingDaysPerYear is the standard annualization factor for daily returns.
const TradingDaysPerYear = 252

// Diversification thresholds on average pairwise correlation.
const (
	WellDiversifiedMax       = 0.2
	ModeratelyDiversifiedMax = 0.5
)

// Sharpe ratio bucket boundaries.
const (
	SharpeAcceptableMin = 0.5
	SharpeGoodMin       = 1.0
	SharpeExcellentMin  = 2.0
)

// Analytics computes risk metrics over close-price series.
type Analytics struct {
	log zerolog.Logger
}

// NewAnalytics creates a new analytics calculator.
func NewAnalytics(log zerolog.Logger) *Analytics {
	return &Analytics{
		log: log.With().Str("component", "risk_analytics").Logger(),
	}
}

// DailyReturns computes fractional day-over-day returns from closes.
// n closes produce n-1 returns.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}
	return returns
}

// PercentReturns computes day-over-day returns expressed in percent.
func PercentReturns(closes []float64) []float64 {
	returns := DailyReturns(closes)
	for i := range returns {
		returns[i] *= 100
	}
	return returns
}

// ValueAtRisk computes the loss threshold for each confidence level in
// domain.VarPercentiles. The value for confidence p is the (1-p/100)
// quantile of the daily percent returns: at 95% confidence, 95% of observed
// days did better than VaR[95]. Returns ErrInsufficientData when fewer than
// two closes are available.
func (a *Analytics) ValueAtRisk(closes []float64) (domain.VarProfile, error) {
	returns := PercentReturns(closes)
	if len(returns) == 0 {
		return nil, domain.ErrInsufficientData
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	profile := make(domain.VarProfile, len(domain.VarPercentiles))
	for _, p := range domain.VarPercentiles {
		profile[p] = quantile(sorted, 1-float64(p)/100)
	}
	return profile, nil
}

// quantile evaluates the q-th quantile (0..1) of sorted values using linear
// interpolation between closest ranks, h = (n-1)q. gonum's stat.Quantile
// offers Empirical and LinInterp cumulant kinds, but neither matches this
// closest-ranks convention, so the interpolation is done directly.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// SharpeRatio computes the annualized Sharpe ratio from closes and an annual
// risk-free rate in percent. Returns ErrInsufficientData when fewer than two
// returns exist or volatility is zero.
func (a *Analytics) SharpeRatio(closes []float64, riskFreeRatePct float64) (float64, error) {
	returns := DailyReturns(closes)
	if len(returns) < 2 {
		return 0, domain.ErrInsufficientData
	}

	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)
	if std == 0 {
		return 0, domain.ErrInsufficientData
	}

	annualizedReturn := mean * TradingDaysPerYear
	annualizedVol := std * math.Sqrt(TradingDaysPerYear)
	riskFree := riskFreeRatePct / 100

	return (annualizedReturn - riskFree) / annualizedVol, nil
}

// SharpeBucketFor classifies a Sharpe ratio value.
func SharpeBucketFor(sharpe float64) domain.SharpeBucket {
	switch {
	case sharpe < SharpeAcceptableMin:
		return domain.SharpeNeedsImprovement
	case sharpe < SharpeGoodMin:
		return domain.SharpeAcceptable
	case sharpe < SharpeExcellentMin:
		return domain.SharpeGood
	default:
		return domain.SharpeExcellent
	}
}

// CorrelationMatrix computes the Pearson correlation of daily returns for
// each pair of series, aligned by date. Each pair uses only the dates both
// series observed; pairs with fewer than two shared return observations get
// NaN. The matrix row order follows symbols.
func (a *Analytics) CorrelationMatrix(series map[string]domain.AssetSeries, symbols []string) domain.CorrelationMatrix {
	// Precompute per-symbol date→return maps once.
	returnsByDate := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		s, ok := series[symbol]
		if !ok {
			returnsByDate[symbol] = map[time.Time]float64{}
			continue
		}
		m := make(map[time.Time]float64, s.Len())
		for i := 1; i < len(s.Points); i++ {
			prev := s.Points[i-1].Close
			if prev == 0 {
				continue
			}
			m[s.Points[i].Date] = (s.Points[i].Close - prev) / prev
		}
		returnsByDate[symbol] = m
	}

	n := len(symbols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			corr := pairCorrelation(returnsByDate[symbols[i]], returnsByDate[symbols[j]])
			values[i][j] = corr
			values[j][i] = corr
		}
	}

	return domain.CorrelationMatrix{
		Symbols: symbols,
		Values:  values,
	}
}

// pairCorrelation aligns two return maps on shared dates and computes
// Pearson correlation. NaN when fewer than two shared observations or
// either side is constant.
func pairCorrelation(a, b map[time.Time]float64) float64 {
	shared := make([]time.Time, 0, len(a))
	for date := range a {
		if _, ok := b[date]; ok {
			shared = append(shared, date)
		}
	}
	if len(shared) < 2 {
		return math.NaN()
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].Before(shared[j]) })

	xs := make([]float64, len(shared))
	ys := make([]float64, len(shared))
	for i, date := range shared {
		xs[i] = a[date]
		ys[i] = b[date]
	}

	if stat.StdDev(xs, nil) == 0 || stat.StdDev(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// AverageCorrelation is the mean of the strict upper triangle, skipping NaN
// cells. NaN when fewer than two assets or no valid pairs exist.
func AverageCorrelation(m domain.CorrelationMatrix) float64 {
	n := len(m.Symbols)
	if n < 2 {
		return math.NaN()
	}

	sum := 0.0
	count := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// DiversificationBucketFor classifies an average pairwise correlation.
// NaN (single asset or no valid pairs) counts as poorly diversified.
func DiversificationBucketFor(avgCorrelation float64) domain.DiversificationBucket {
	switch {
	case avgCorrelation < WellDiversifiedMax:
		return domain.WellDiversified
	case avgCorrelation < ModeratelyDiversifiedMax:
		return domain.ModeratelyDiversified
	default:
		return domain.PoorlyDiversified
	}
}
