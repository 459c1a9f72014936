// Package handlers provides HTTP handlers for portfolio analysis operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/domain"
)

// Analyzer runs one analytics pipeline pass.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.PortfolioRequest) (*domain.PortfolioResult, error)
}

// Handler handles portfolio analysis HTTP requests
type Handler struct {
	analyzer Analyzer
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(analyzer Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// AnalyzeRequest is the wire form of a pipeline request. Dates are
// "2006-01-02" strings; omitted dates fall back to pipeline defaults.
type AnalyzeRequest struct {
	Symbols         []string           `json:"symbols"`
	Start           string             `json:"start"`
	End             string             `json:"end"`
	Investments     map[string]float64 `json:"investments"`
	RiskFreeRatePct float64            `json:"risk_free_rate_pct"`
	SharpeStart     string             `json:"sharpe_start"`
	SharpeEnd       string             `json:"sharpe_end"`
}

// HandleAnalyze handles POST /api/portfolio/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pipelineReq, err := req.toDomain()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), pipelineReq)
	if err != nil {
		if errors.Is(err, domain.ErrNoAssets) {
			http.Error(w, "No assets selected", http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Analysis failed")
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (r AnalyzeRequest) toDomain() (domain.PortfolioRequest, error) {
	req := domain.PortfolioRequest{
		Symbols:         r.Symbols,
		Investments:     r.Investments,
		RiskFreeRatePct: r.RiskFreeRatePct,
	}

	var err error
	if req.Start, err = parseDate(r.Start); err != nil {
		return req, err
	}
	if req.End, err = parseDate(r.End); err != nil {
		return req, err
	}
	if req.SharpeStart, err = parseDate(r.SharpeStart); err != nil {
		return req, err
	}
	if req.SharpeEnd, err = parseDate(r.SharpeEnd); err != nil {
		return req, err
	}
	return req, nil
}

// parseDate accepts "2006-01-02" or RFC3339; empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
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
