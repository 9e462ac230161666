package worker

// Dead letter queue: jobs that exhaust their attempts are parked in
// dlq:{original_queue} for inspection or redrive.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix    = "dlq:"
	ParkedPrefix = "dlq:parked:"
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string `json:"original_queue"`
	Job           Job    `json:"job"`
	Reason        string `json:"reason"`
	FailedAt      string `json:"failed_at"` // RFC3339
	Attempts      int    `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue.
func SendToDLQ(ctx context.Context, broker Broker, queue string, job Job, reason string, attempts int) {
	pushEntry(ctx, broker, DLQPrefix+queue, DLQEntry{
		OriginalQueue: queue,
		Job:           job,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	})
}

func pushEntry(ctx context.Context, broker Broker, key string, entry DLQEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.OriginalQueue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := broker.Push(ctx, key, data); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("dlq_key", key).
		Str("job_type", entry.Job.Type).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, broker Broker, queue string) (int64, error) {
	return broker.Len(ctx, DLQPrefix+queue)
}
