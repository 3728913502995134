package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueDLQ = "jobs:dlq"

// DLQEntry wraps a job that exhausted its retries, preserving the
// original queue and failure reason for manual inspection.
type DLQEntry struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ parks an exhausted job in the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	entry := DLQEntry{
		Queue:    queue,
		Job:      job,
		Error:    cause.Error(),
		FailedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal DLQ entry")
		return
	}
	if err := rdb.LPush(ctx, QueueDLQ, encoded).Err(); err != nil {
		log.Error().Err(err).Msg("failed to push job to DLQ")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Msg("job moved to dead letter queue")
}
