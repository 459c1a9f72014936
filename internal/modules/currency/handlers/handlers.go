// Package handlers provides HTTP handlers for currency operations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vantagefin/vantage/internal/modules/display"
)

// RateResolver resolves exchange rates with fallback, never failing.
type RateResolver interface {
	Rate(ctx context.Context, from, to string) float64
	SyncRates(ctx context.Context) int
	ReferenceCurrency() string
}

// Handler handles currency HTTP requests
type Handler struct {
	rates RateResolver
	log   zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(rates RateResolver, log zerolog.Logger) *Handler {
	return &Handler{
		rates: rates,
		log:   log.With().Str("handler", "currency").Logger(),
	}
}

// ConvertRequest represents a request to convert currency
type ConvertRequest struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
}

// HandleGetRate handles GET /api/currency/rate/{from}/{to}
func (h *Handler) HandleGetRate(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")

	rate := h.rates.Rate(r.Context(), from, to)

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"from": from,
			"to":   to,
			"rate": rate,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleConvert handles POST /api/currency/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FromCurrency == "" || req.ToCurrency == "" {
		http.Error(w, "from_currency and to_currency are required", http.StatusBadRequest)
		return
	}

	rate := h.rates.Rate(r.Context(), req.FromCurrency, req.ToCurrency)
	converted := req.Amount * rate

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"from_currency": req.FromCurrency,
			"to_currency":   req.ToCurrency,
			"amount":        req.Amount,
			"rate":          rate,
			"converted":     converted,
			"formatted":     display.FormatCurrency(converted, req.ToCurrency),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleSyncRates handles POST /api/currency/rates/sync
func (h *Handler) HandleSyncRates(w http.ResponseWriter, r *http.Request) {
	refreshed := h.rates.SyncRates(r.Context())

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"refreshed":          refreshed,
			"reference_currency": h.rates.ReferenceCurrency(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
