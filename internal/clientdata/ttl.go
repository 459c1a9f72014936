package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Exchange rates move constantly; the 1 hour TTL bounds external call
	// volume while keeping conversions reasonably current.
	TTLExchangeRate = time.Hour

	// Native currency of an instrument is effectively static.
	TTLAssetMetadata = 30 * 24 * time.Hour

	// Daily bars only gain a new row once per trading day; a short TTL keeps
	// interactive recomputes from hammering the provider.
	TTLPriceHistory = 15 * time.Minute
)
