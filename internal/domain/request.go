package domain

import "time"

// MinWindowStart is the earliest selectable window start.
var MinWindowStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultRiskFreeRatePct is the default risk-free rate in percent.
const DefaultRiskFreeRatePct = 3.0

// DefaultInvestment is the per-asset investment amount assumed when the
// caller does not provide one.
const DefaultInvestment = 1.0

// PortfolioRequest is the full input of one analytics pipeline pass. It
// replaces the accumulated per-widget state of an interactive dashboard:
// every recompute builds a fresh request and runs the pipeline once.
type PortfolioRequest struct {
	Symbols []string `json:"symbols"`
	// Window for price history, clamped to [MinWindowStart, today].
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Investments in the reference currency; missing symbols default to
	// DefaultInvestment, zero is allowed.
	Investments Allocation `json:"investments"`
	// RiskFreeRatePct is the annual risk-free rate in percent (e.g. 3 for 3%).
	RiskFreeRatePct float64 `json:"risk_free_rate_pct"`
	// Independent sub-window for Sharpe analysis; zero values default to the
	// main window.
	SharpeStart time.Time `json:"sharpe_start"`
	SharpeEnd   time.Time `json:"sharpe_end"`
}

// AssetSnapshot is the per-asset portion of a pipeline result.
type AssetSnapshot struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
	// Rate converts one unit of the native currency to the reference currency.
	Rate float64 `json:"rate"`
	// Latest closing price in native and reference currency. Zero when the
	// series is empty.
	CurrentPrice    float64 `json:"current_price"`
	CurrentPriceRef float64 `json:"current_price_ref"`
	// Day-over-day percent change relative to the previous close. Nil when
	// fewer than two observations exist.
	DayChangePct *float64 `json:"day_change_pct,omitempty"`
	// Investment amounts in reference and native currency.
	Investment       float64 `json:"investment"`
	InvestmentNative float64 `json:"investment_native"`
	// Annualized Sharpe over the Sharpe sub-window; nil when undefined.
	Sharpe *SharpeResult `json:"sharpe,omitempty"`
}

// PortfolioResult is the full output of one analytics pipeline pass.
type PortfolioResult struct {
	RunID             string    `json:"run_id"`
	ReferenceCurrency string    `json:"reference_currency"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	TotalInvestment   float64   `json:"total_investment"`

	Assets []AssetSnapshot `json:"assets"`
	// Series holds the normalized, reference-currency series per symbol,
	// for charting.
	Series map[string]AssetSeries `json:"series"`

	Portfolio AssetSeries `json:"portfolio"`
	// Day-over-day percent change of the portfolio value; nil when undefined.
	PortfolioChangePct *float64 `json:"portfolio_change_pct,omitempty"`
	// ReturnsPerDollar is the end-of-window value of one unit invested at
	// the window start (portfolio last close over first close); nil when the
	// portfolio has fewer than two observations.
	ReturnsPerDollar *float64 `json:"returns_per_dollar,omitempty"`

	Correlation *CorrelationMatrix `json:"correlation,omitempty"`
	// AvgCorrelation is nil when fewer than two assets contributed returns.
	AvgCorrelation  *float64              `json:"avg_correlation,omitempty"`
	Diversification DiversificationBucket `json:"diversification,omitempty"`

	VaR          VarProfile `json:"var,omitempty"`
	VaRNarrative string     `json:"var_narrative,omitempty"`

	PortfolioSharpe *SharpeResult `json:"portfolio_sharpe,omitempty"`

	// Warnings records non-fatal degradations (empty series, skipped
	// metrics) encountered during the pass.
	Warnings []string `json:"warnings,omitempty"`
}
