package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
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

func TestHandleGetVaR(t *testing.T) {
	stub := &stubAnalyzer{result: &domain.PortfolioResult{
		RunID:        "run-1",
		VaR:          domain.VarProfile{50: 0.1, 95: -2.0},
		VaRNarrative: "narrative",
	}}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet,
		"/risk/var?symbols=AAPL,MSFT&start=2023-01-01&risk_free_rate_pct=4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"AAPL", "MSFT"}, stub.lastRequest.Symbols)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), stub.lastRequest.Start)
	assert.Equal(t, 4.0, stub.lastRequest.RiskFreeRatePct)

	var resp struct {
		Data struct {
			VaR       map[string]float64 `json:"var"`
			Narrative string             `json:"narrative"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -2.0, resp.Data.VaR["95"])
	assert.Equal(t, "narrative", resp.Data.Narrative)
}

func TestHandleGetSharpe(t *testing.T) {
	stub := &stubAnalyzer{result: &domain.PortfolioResult{
		PortfolioSharpe: &domain.SharpeResult{Value: 1.2, Bucket: domain.SharpeGood},
		Assets: []domain.AssetSnapshot{
			{Symbol: "AAPL", Sharpe: &domain.SharpeResult{Value: 0.7, Bucket: domain.SharpeAcceptable}},
		},
	}}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/risk/sharpe?symbols=AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Portfolio domain.SharpeResult            `json:"portfolio"`
			Assets    map[string]domain.SharpeResult `json:"assets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.2, resp.Data.Portfolio.Value)
	assert.Equal(t, domain.SharpeGood, resp.Data.Portfolio.Bucket)
	assert.Equal(t, 0.7, resp.Data.Assets["AAPL"].Value)
}

func TestHandleGetCorrelation_NaNCellsAsNull(t *testing.T) {
	stub := &stubAnalyzer{result: &domain.PortfolioResult{
		Correlation: &domain.CorrelationMatrix{
			Symbols: []string{"AAA", "BBB"},
			Values: [][]float64{
				{1, math.NaN()},
				{math.NaN(), 1},
			},
		},
	}}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/risk/correlation?symbols=AAA,BBB", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Correlation struct {
				Symbols []string     `json:"symbols"`
				Values  [][]*float64 `json:"values"`
			} `json:"correlation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Data.Correlation.Symbols)
	require.NotNil(t, resp.Data.Correlation.Values[0][0])
	assert.Equal(t, 1.0, *resp.Data.Correlation.Values[0][0])
	assert.Nil(t, resp.Data.Correlation.Values[0][1])
}

func TestRequestFromQuery_Errors(t *testing.T) {
	router := newTestRouter(&stubAnalyzer{err: domain.ErrNoAssets})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/var", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/var?symbols=AAPL&start=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/var?symbols=AAPL&risk_free_rate_pct=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
