// Package display renders metric values for presentation: currency strings,
// qualitative bucket labels, and the value-at-risk narrative.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vantagefin/vantage/internal/domain"
)

// currencySymbols maps ISO codes to their display prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "C$",
	"AUD": "A$",
	"CHF": "CHF",
	"CNY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"BRL": "R$",
	"MXN": "MX$",
	"RUB": "₽",
}

// FormatCurrency renders amount with the currency's symbol prefix. Unknown
// codes render as "CODE amount". All currencies use two decimals, including
// zero-decimal ones like JPY.
func FormatCurrency(amount float64, currencyCode string) string {
	symbol, ok := currencySymbols[currencyCode]
	if !ok {
		return fmt.Sprintf("%s %.2f", currencyCode, amount)
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// ParseCurrency recovers the numeric amount from a FormatCurrency string.
func ParseCurrency(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)

	// Unknown-code form: "CODE amount"
	if idx := strings.LastIndex(trimmed, " "); idx >= 0 {
		return strconv.ParseFloat(trimmed[idx+1:], 64)
	}

	// Known-symbol form: strip the longest matching prefix.
	longest := ""
	for _, symbol := range currencySymbols {
		if strings.HasPrefix(trimmed, symbol) && len(symbol) > len(longest) {
			longest = symbol
		}
	}
	return strconv.ParseFloat(strings.TrimPrefix(trimmed, longest), 64)
}

// DiversificationLabel returns the display text for a diversification bucket.
func DiversificationLabel(b domain.DiversificationBucket) string {
	switch b {
	case domain.WellDiversified:
		return "WELL DIVERSIFIED"
	case domain.ModeratelyDiversified:
		return "MODERATELY DIVERSIFIED"
	default:
		return "POORLY DIVERSIFIED"
	}
}

// SharpeLabel returns the display text for a Sharpe bucket.
func SharpeLabel(b domain.SharpeBucket) string {
	switch b {
	case domain.SharpeNeedsImprovement:
		return "NEEDS IMPROVEMENT"
	case domain.SharpeAcceptable:
		return "NOT TOO BAD!"
	case domain.SharpeGood:
		return "DECENT!"
	default:
		return "EXCELLENT"
	}
}

// VarNarrative interprets a VaR profile at the 95% and 50% confidence
// levels in plain language.
func VarNarrative(profile domain.VarProfile) string {
	p95, ok95 := profile[95]
	p50, ok50 := profile[50]
	if !ok95 || !ok50 {
		return ""
	}
	return fmt.Sprintf(
		"On 95%% of days the portfolio lost less than %.2f%% of its value; the median daily return was %.2f%%.",
		-p95, p50,
	)
}
