package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix names the dead letter list of each queue: dlq:{queue}.
const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with what is needed to inspect or requeue it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a job that exhausted its retries to dlq:{queue}.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	// the job is already off the main queue, so the push must outlive a shutdown
	if err := rdb.LPush(context.WithoutCancel(ctx), DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQPrefix+queue).Msg("dlq: failed to push to DLQ")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// Requeue moves up to n dead-lettered jobs of queue back onto it, oldest
// first, and reports how many were moved.
func Requeue(ctx context.Context, rdb *redis.Client, queue string, n int) (int, error) {
	moved := 0
	for moved < n {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, err
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("dlq: unreadable entry dropped")
			continue
		}
		encoded, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload, QueuedAt: time.Now().UTC()})
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			// put it back where it was
			_ = rdb.RPush(context.WithoutCancel(ctx), DLQPrefix+queue, raw).Err()
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("jobs", moved).Msg("dlq: jobs requeued")
	}
	return moved, nil
}
