package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RateSyncer prefetches exchange rates into the cache.
type RateSyncer interface {
	SyncRates(ctx context.Context) int
}

// RatesSyncJob refreshes cached exchange rates on a schedule.
type RatesSyncJob struct {
	rates   RateSyncer
	timeout time.Duration
	log     zerolog.Logger
}

// NewRatesSyncJob creates a new rates sync job.
func NewRatesSyncJob(rates RateSyncer, log zerolog.Logger) *RatesSyncJob {
	return &RatesSyncJob{
		rates:   rates,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "rates_sync").Logger(),
	}
}

// Run refreshes all known currency rates into the reference currency.
func (j *RatesSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	refreshed := j.rates.SyncRates(ctx)
	if refreshed == 0 {
		return fmt.Errorf("no rates refreshed")
	}

	j.log.Info().Int("refreshed", refreshed).Msg("Rates sync completed")
	return nil
}

// Name returns the job name
func (j *RatesSyncJob) Name() string {
	return "rates_sync"
}
