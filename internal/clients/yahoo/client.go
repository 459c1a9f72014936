// Package yahoo provides a Yahoo Finance chart API client used for daily
// price history and instrument metadata (native currency).
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/clientdata"
	"github.com/vantagefin/vantage/internal/domain"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client is a Yahoo Finance chart API client
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:       log.With().Str("client", "yahoo").Logger(),
		cacheRepo: cacheRepo,
	}
}

// chartResponse models the chart API payload. Bar fields are pointers
// because Yahoo returns JSON null for missing observations.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// cachedMetadata is the structure stored in the asset_metadata cache table.
type cachedMetadata struct {
	Currency string `json:"currency"`
}

// cachedBar is the price_history cache form of a bar. Missing observations
// are null pointers because NaN is not representable in JSON.
type cachedBar struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open"`
	High     *float64  `json:"high"`
	Low      *float64  `json:"low"`
	Close    *float64  `json:"close"`
	AdjClose *float64  `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

func toCached(bars []domain.RawBar) []cachedBar {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{
			Date:     b.Date,
			Open:     nanToNil(b.Open),
			High:     nanToNil(b.High),
			Low:      nanToNil(b.Low),
			Close:    nanToNil(b.Close),
			AdjClose: nanToNil(b.AdjClose),
			Volume:   b.Volume,
		}
	}
	return out
}

func fromCached(cached []cachedBar) []domain.RawBar {
	out := make([]domain.RawBar, len(cached))
	for i, b := range cached {
		out[i] = domain.RawBar{
			Date:     b.Date,
			Open:     nilToNaN(b.Open),
			High:     nilToNaN(b.High),
			Low:      nilToNaN(b.Low),
			Close:    nilToNaN(b.Close),
			AdjClose: nilToNaN(b.AdjClose),
			Volume:   b.Volume,
		}
	}
	return out
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// GetDailyBars fetches daily OHLCV bars for [start, end]. An empty window
// returns an empty slice, not an error. Missing observations come back as NaN
// so the series normalizer can drop them.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.RawBar, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("price_history", cacheKey)
		if err == nil && data != nil {
			var cached []cachedBar
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Int("count", len(cached)).Msg("Cache hit")
				return fromCached(cached), nil
			}
		}
	}

	result, err := c.fetchChart(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return []domain.RawBar{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in response")
		return []domain.RawBar{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	// Some instruments omit the adjclose indicator entirely; fall back to
	// raw closes so row-wise filtering downstream does not reject every bar.
	adjCloseData := quote.Close
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]domain.RawBar, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		bar := domain.RawBar{
			Date:     time.Unix(ts, 0).UTC(),
			Open:     deref(quote.Open, i),
			High:     deref(quote.High, i),
			Low:      deref(quote.Low, i),
			Close:    deref(quote.Close, i),
			AdjClose: deref(adjCloseData, i),
			Volume:   derefInt(quote.Volume, i),
		}
		bars = append(bars, bar)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("price_history", cacheKey, toCached(bars), clientdata.TTLPriceHistory); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price history")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Int("count", len(bars)).
		Msg("Fetched daily bars")

	return bars, nil
}

// GetCurrency resolves the instrument's native currency from chart metadata.
// Returns an error when the lookup fails; callers default to the reference
// currency in that case.
func (c *Client) GetCurrency(ctx context.Context, symbol string) (string, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("asset_metadata", symbol)
		if err == nil && data != nil {
			var cached cachedMetadata
			if err := json.Unmarshal(data, &cached); err == nil && cached.Currency != "" {
				return cached.Currency, nil
			}
		}
	}

	// A one-week window is enough to receive meta without a large payload.
	end := time.Now().UTC()
	result, err := c.fetchChart(ctx, symbol, end.AddDate(0, 0, -7), end)
	if err != nil {
		return "", err
	}

	if len(result.Chart.Result) == 0 {
		return "", fmt.Errorf("no chart metadata for %s", symbol)
	}

	currency := result.Chart.Result[0].Meta.Currency
	if currency == "" {
		return "", fmt.Errorf("currency missing in metadata for %s", symbol)
	}

	if c.cacheRepo != nil {
		cached := cachedMetadata{Currency: currency}
		if err := c.cacheRepo.Store("asset_metadata", symbol, cached, clientdata.TTLAssetMetadata); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache metadata")
		}
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("currency", currency).
		Msg("Resolved native currency")

	return currency, nil
}

// fetchChart performs the chart API request for [start, end] at 1d interval.
func (c *Client) fetchChart(ctx context.Context, symbol string, start, end time.Time) (*chartResponse, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", end.Unix()))

	reqURL := c.baseURL + "/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %v", result.Chart.Error)
	}

	return &result, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func derefInt(vals []*int64, i int) int64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
