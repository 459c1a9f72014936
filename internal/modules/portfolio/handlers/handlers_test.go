package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagefin/vantage/internal/domain"
)

type stubAnalyzer struct {
	lastRequest domain.PortfolioRequest
	result      *domain.PortfolioResult
	err         error
}

func (s *stubAnalyzer) Analyze(_ context.Context, req domain.PortfolioRequest) (*domain.PortfolioResult, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(analyzer Analyzer) chi.Router {
	r := chi.NewRouter()
	NewHandler(analyzer, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func TestHandleAnalyze(t *testing.T) {
	avg := 0.42
	stub := &stubAnalyzer{result: &domain.PortfolioResult{
		RunID:             "run-1",
		ReferenceCurrency: "USD",
		TotalInvestment:   100,
		AvgCorrelation:    &avg,
		Diversification:   domain.ModeratelyDiversified,
	}}
	router := newTestRouter(stub)

	body := `{
		"symbols": ["AAPL", "MSFT"],
		"start": "2023-01-01",
		"end": "2024-01-01",
		"investments": {"AAPL": 60, "MSFT": 40},
		"risk_free_rate_pct": 4.5
	}`
	req := httptest.NewRequest(http.MethodPost, "/portfolio/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, []string{"AAPL", "MSFT"}, stub.lastRequest.Symbols)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), stub.lastRequest.Start)
	assert.Equal(t, 4.5, stub.lastRequest.RiskFreeRatePct)
	assert.Equal(t, 60.0, stub.lastRequest.Investments["AAPL"])

	var resp struct {
		Data struct {
			RunID           string  `json:"run_id"`
			AvgCorrelation  float64 `json:"avg_correlation"`
			Diversification string  `json:"diversification"`
		} `json:"data"`
		Metadata struct {
			Timestamp string `json:"timestamp"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, 0.42, resp.Data.AvgCorrelation)
	assert.Equal(t, "MODERATE", resp.Data.Diversification)
	assert.NotEmpty(t, resp.Metadata.Timestamp)
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	router := newTestRouter(&stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/portfolio/analyze", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_InvalidDate(t *testing.T) {
	router := newTestRouter(&stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/portfolio/analyze",
		strings.NewReader(`{"symbols":["AAPL"],"start":"January 1st"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_NoAssets(t *testing.T) {
	router := newTestRouter(&stubAnalyzer{err: domain.ErrNoAssets})

	req := httptest.NewRequest(http.MethodPost, "/portfolio/analyze", strings.NewReader(`{"symbols":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No assets selected")
}
