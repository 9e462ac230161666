package worker

// Background goroutine that periodically moves dead-lettered jobs back onto
// their queue. For email jobs the mail circuit breaker gates every tick so a
// downed relay is not hammered.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/raw-dani/pos-only/internal/infra"

	"github.com/rs/zerolog/log"
)

const (
	redriveTickInterval = 30 * time.Second
	redriveBatchSize    = 10
	// MaxRedrives is how often one job may leave the DLQ before it is parked.
	MaxRedrives = 3
)

// RedriveConfig holds all dependencies for the redrive goroutine.
type RedriveConfig struct {
	Broker  Broker
	Breaker *infra.CircuitBreaker
	Queue   string
}

// StartRedrive ticks every 30s until ctx is cancelled.
func StartRedrive(ctx context.Context, cfg RedriveConfig) {
	go func() {
		ticker := time.NewTicker(redriveTickInterval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("redrive: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive: shutting down")
				return
			case <-ticker.C:
				Redrive(ctx, cfg)
			}
		}
	}()
}

// Redrive moves up to one batch of entries from the DLQ back to cfg.Queue and
// returns how many were requeued. Entries that exhausted MaxRedrives go to
// the parked list instead.
func Redrive(ctx context.Context, cfg RedriveConfig) int {
	if cfg.Breaker != nil && cfg.Breaker.State() == infra.BreakerOpen {
		log.Debug().Msg("redrive: circuit breaker is open, skipping tick")
		return 0
	}

	requeued := 0
	for i := 0; i < redriveBatchSize; i++ {
		raw, err := cfg.Broker.TryPop(ctx, DLQPrefix+cfg.Queue)
		if errors.Is(err, ErrEmpty) {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("redrive: DLQ read failed")
			break
		}

		var entry DLQEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Error().Err(err).Msg("redrive: dropping unreadable DLQ entry")
			continue
		}
		if entry.Job.Redrives >= MaxRedrives {
			pushEntry(ctx, cfg.Broker, ParkedPrefix+cfg.Queue, entry)
			continue
		}

		job := entry.Job
		job.Redrives++
		if err := pushJob(ctx, cfg.Broker, cfg.Queue, job); err != nil {
			log.Error().Err(err).Msg("redrive: requeue failed, returning entry to DLQ")
			pushEntry(ctx, cfg.Broker, DLQPrefix+cfg.Queue, entry)
			break
		}
		requeued++
	}

	if requeued > 0 {
		log.Info().Int("count", requeued).Str("queue", cfg.Queue).Msg("redrive: jobs requeued")
	}
	return requeued
}
