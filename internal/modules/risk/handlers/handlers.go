// Package handlers provides HTTP handlers for risk metrics operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
)

// Analyzer runs one analytics pipeline pass.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.PortfolioRequest) (*domain.PortfolioResult, error)
}

// Handler handles risk metrics HTTP requests
type Handler struct {
	analyzer Analyzer
	log      zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(analyzer Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetVaR handles GET /api/risk/var
func (h *Handler) HandleGetVaR(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyze(w, r)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"var":       result.VaR,
			"narrative": result.VaRNarrative,
		},
		"metadata": map[string]interface{}{
			"run_id":    result.RunID,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetSharpe handles GET /api/risk/sharpe
func (h *Handler) HandleGetSharpe(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyze(w, r)
	if !ok {
		return
	}

	assets := make(map[string]*domain.SharpeResult, len(result.Assets))
	for _, asset := range result.Assets {
		assets[asset.Symbol] = asset.Sharpe
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"portfolio": result.PortfolioSharpe,
			"assets":    assets,
		},
		"metadata": map[string]interface{}{
			"run_id":    result.RunID,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetCorrelation handles GET /api/risk/correlation
func (h *Handler) HandleGetCorrelation(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyze(w, r)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"correlation":     result.Correlation,
			"avg_correlation": result.AvgCorrelation,
			"diversification": result.Diversification,
		},
		"metadata": map[string]interface{}{
			"run_id":    result.RunID,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// analyze builds a pipeline request from query parameters and runs it.
// Writes the error response itself and returns ok=false on failure.
func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) (*domain.PortfolioResult, bool) {
	req, err := requestFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNoAssets) {
			http.Error(w, "symbols parameter is required", http.StatusBadRequest)
			return nil, false
		}
		h.log.Error().Err(err).Msg("Analysis failed")
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return nil, false
	}
	return result, true
}

// requestFromQuery parses ?symbols=A,B&start=2020-01-01&end=...&risk_free_rate_pct=3
func requestFromQuery(r *http.Request) (domain.PortfolioRequest, error) {
	var req domain.PortfolioRequest

	if symbols := r.URL.Query().Get("symbols"); symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Symbols = append(req.Symbols, s)
			}
		}
	}

	var err error
	if req.Start, err = parseDate(r.URL.Query().Get("start")); err != nil {
		return req, err
	}
	if req.End, err = parseDate(r.URL.Query().Get("end")); err != nil {
		return req, err
	}

	if raw := r.URL.Query().Get("risk_free_rate_pct"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, errors.New("invalid risk_free_rate_pct: " + raw)
		}
		req.RiskFreeRatePct = rate
	}

	return req, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("invalid date: " + s)
	}
	return t.UTC(), nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
