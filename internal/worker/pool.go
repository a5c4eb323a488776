package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tienda/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCatalogo = "jobs:catalogo"

	JobCatalogo = "catalogo"

	maxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}

// JobHandler processes one payload. A returned error is retried and, once
// retries run out, the job goes to the dead letter queue.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers holds the handler of each job type.
type WorkerHandlers struct {
	Catalogo JobHandler
}

func (h *WorkerHandlers) porTipo(tipo string) JobHandler {
	switch tipo {
	case JobCatalogo:
		return h.Catalogo
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueCatalogo queues a catalog PDF delivery by email.
func (d *Dispatcher) EnqueueCatalogo(ctx context.Context, req dto.EnviarCatalogoRequest) error {
	return d.enqueue(ctx, QueueCatalogo, JobCatalogo, req)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data, QueuedAt: time.Now().UTC()})
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueCatalogo}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: redis unavailable, backing off")
				select {
				case <-ctx.Done():
				case <-time.After(pausaRedis):
				}
				continue
			}
			if err != nil || len(result) < 2 {
				continue
			}
			queue, raw := result[0], result[1]
			job, err := procesar(ctx, handlers, raw)
			if err != nil {
				SendToDLQ(ctx, rdb, queue, job, err.Error(), maxIntentos)
			}
		}
	}
}

// procesar decodes raw and runs its handler with retries. The decoded job
// is returned even on error so it can be dead-lettered.
func procesar(ctx context.Context, handlers *WorkerHandlers, raw string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return Job{Type: "desconocido", Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, fmt.Errorf("job ilegible: %w", err)
	}
	h := handlers.porTipo(job.Type)
	if h == nil {
		return job, fmt.Errorf("sin handler para %q", job.Type)
	}

	log.Info().Str("type", job.Type).Msg("processing job")
	err := withRetry(ctx, maxIntentos, func(intento int) error {
		err := h.Process(ctx, job.Payload)
		if err != nil {
			log.Warn().Err(err).Str("type", job.Type).Int("intento", intento+1).Msg("job fallido")
		}
		return err
	})
	return job, err
}

// pausaRedis is the wait after a failed BRPOP so an outage does not spin.
var pausaRedis = 2 * time.Second

// retryBase is the first backoff wait; tests shorten it.
var retryBase = time.Second

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, retryBase, 2*retryBase, ...). Returns the last error.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBase << uint(i-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
