package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces dead letters: jobs from queue Q that failed for good
// live in the list DLQPrefix+Q, newest first.
const DLQPrefix = "dlq:"

// DLQEntry is a dead-lettered job as stored in Redis.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failed_at"`
}

// deadLetter parks job under DLQPrefix+queue. When the push itself fails the
// payload goes to the log so the movement can still be replayed by hand.
func deadLetter(ctx context.Context, q Queue, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		Attempts:      job.Attempts,
		FailedAt:      time.Now().UTC(),
	}
	logger := log.With().Str("queue", queue).Str("job_type", job.Type).Int("attempts", job.Attempts).Logger()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Error().Err(err).Msg("dlq: entrada no serializable")
		return
	}
	if err := q.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		logger.Error().Err(err).RawJSON("payload", job.Payload).Str("reason", reason).Msg("dlq: no se pudo guardar el job")
		return
	}
	logger.Warn().Str("reason", reason).Msg("dlq: job descartado")
}

// DLQLength returns how many jobs of queue are dead-lettered.
func DLQLength(ctx context.Context, q Queue, queue string) (int64, error) {
	return q.LLen(ctx, DLQPrefix+queue).Result()
}

// DLQEntries returns up to limit dead letters of queue, newest first.
func DLQEntries(ctx context.Context, q Queue, queue string, limit int64) ([]DLQEntry, error) {
	if limit <= 0 {
		return []DLQEntry{}, nil
	}
	raws, err := q.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raws))
	for i, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("dlq entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
