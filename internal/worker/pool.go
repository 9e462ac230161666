package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raw-dani/pos-only/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"

	JobReceipt = "receipt"
	JobEmail   = "email"

	popTimeout         = 5 * time.Second
	defaultMaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Redrives int             `json:"redrives,omitempty"`
}

// Handler processes one job payload. A returned error is retried.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f HandlerFunc) Process(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// Dispatcher enqueues async jobs. The worker pool dequeues them.
type Dispatcher struct {
	broker Broker
}

func NewDispatcher(broker Broker) *Dispatcher {
	return &Dispatcher{broker: broker}
}

// EnqueueReceipt schedules PDF rendering for a paid invoice.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, invoiceID uuid.UUID) error {
	return d.enqueue(ctx, QueueReceipt, JobReceipt, ReceiptJobPayload{InvoiceID: invoiceID.String()})
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.broker, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, broker Broker, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return broker.Push(ctx, queue, encoded)
}

// Pool runs job handlers on a fixed number of goroutines. A failing job is
// retried with exponential backoff and dead-lettered once attempts run out.
type Pool struct {
	broker      Broker
	handlers    map[string]Handler
	queues      []string
	maxAttempts int
	backoff     time.Duration
	wg          sync.WaitGroup
}

func NewPool(broker Broker) *Pool {
	return &Pool{
		broker:      broker,
		handlers:    make(map[string]Handler),
		maxAttempts: defaultMaxAttempts,
		backoff:     time.Second,
	}
}

// Register binds a job type to its handler and starts consuming queue.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines. Each blocks on the broker, so idle
// workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		queue, raw, err := p.broker.Pop(ctx, popTimeout, p.queues...)
		if err != nil {
			if !errors.Is(err, ErrEmpty) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("queue pop failed")
				sleep(ctx, time.Second)
			}
			continue
		}
		p.handle(ctx, queue, raw)
	}
}

func (p *Pool) handle(ctx context.Context, queue string, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.broker, queue, Job{Type: "unknown", Payload: opaquePayload(raw)}, err.Error(), 0)
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job type")
		SendToDLQ(ctx, p.broker, queue, job, "no handler registered", 0)
		return
	}

	attempts, err := p.withRetry(ctx, func() error { return h.Process(ctx, job.Payload) })
	metrics.JobProcessed(job.Type, err)
	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Int("attempts", attempts).Msg("job failed")
		SendToDLQ(ctx, p.broker, queue, job, err.Error(), attempts)
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}

// opaquePayload keeps undecodable bytes as a JSON string so the DLQ entry
// still marshals.
func opaquePayload(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}

// withRetry calls fn up to maxAttempts times. The wait doubles after every
// failure: backoff, 2*backoff, ...
func (p *Pool) withRetry(ctx context.Context, fn func() error) (int, error) {
	var lastErr error
	for i := 0; i < p.maxAttempts; i++ {
		if i > 0 {
			if !sleep(ctx, p.backoff*time.Duration(1<<uint(i-1))) {
				return i, ctx.Err()
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return i + 1, nil
	}
	return p.maxAttempts, fmt.Errorf("after %d attempts: %w", p.maxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
