package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagefin/vantage/internal/clientdata"
	"github.com/vantagefin/vantage/internal/database"
)

const chartPayload = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL"},
      "timestamp": [1704067200, 1704153600, 1704240000],
      "indicators": {
        "quote": [{
          "open":   [184.0, null, 186.0],
          "high":   [185.0, null, 187.5],
          "low":    [183.0, null, 185.5],
          "close":  [184.5, null, 187.0],
          "volume": [1000, null, 1200]
        }],
        "adjclose": [{"adjclose": [184.1, null, 186.6]}]
      }
    }],
    "error": null
  }
}`

func newTestRepo(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Name: "test",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return clientdata.NewRepository(db.Conn())
}

func TestGetDailyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	bars, err := c.GetDailyBars(context.Background(),
		"AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	require.Len(t, bars, 3)
	assert.Equal(t, 184.5, bars[0].Close)
	assert.Equal(t, int64(1000), bars[0].Volume)
	// Null observations come through as NaN, not zero.
	assert.True(t, math.IsNaN(bars[1].Close))
	assert.True(t, math.IsNaN(bars[1].Open))
	assert.Equal(t, 187.0, bars[2].Close)
	assert.Equal(t, 186.6, bars[2].AdjClose)
}

func TestGetDailyBars_MissingAdjCloseFallsBackToClose(t *testing.T) {
	payload := `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL"},
      "timestamp": [1704067200, 1704153600],
      "indicators": {
        "quote": [{
          "open":   [184.0, 185.0],
          "high":   [185.0, 186.0],
          "low":    [183.0, 184.0],
          "close":  [184.5, 185.5],
          "volume": [1000, 1100]
        }]
      }
    }],
    "error": null
  }
}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	bars, err := c.GetDailyBars(context.Background(),
		"AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Without an adjclose indicator the raw close stands in, so downstream
	// row filtering does not discard the whole series.
	require.Len(t, bars, 2)
	assert.Equal(t, 184.5, bars[0].AdjClose)
	assert.Equal(t, 185.5, bars[1].AdjClose)
}

func TestGetDailyBars_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	bars, err := c.GetDailyBars(context.Background(), "NODATA", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetDailyBars_CachesResponse(t *testing.T) {
	repo := newTestRepo(t)
	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, repo, zerolog.Nop())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	first, err := c.GetDailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	second, err := c.GetDailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, apiCalls)
	require.Len(t, second, len(first))
	assert.Equal(t, first[0].Close, second[0].Close)
}

func TestGetCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	currency, err := c.GetCurrency(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "USD", currency)
}

func TestGetCurrency_MissingMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	_, err := c.GetCurrency(context.Background(), "NODATA")
	assert.Error(t, err)
}

func TestGetCurrency_Cached(t *testing.T) {
	repo := newTestRepo(t)
	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, repo, zerolog.Nop())

	_, err := c.GetCurrency(context.Background(), "AAPL")
	require.NoError(t, err)
	currency, err := c.GetCurrency(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "USD", currency)
	assert.Equal(t, 1, apiCalls)
}
