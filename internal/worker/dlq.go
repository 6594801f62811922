package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead letter list of each job queue:
// dlq:{queue}, newest entry first.
const DLQPrefix = "dlq:"

// DeadLetter is a job that could not be processed, kept for inspection.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobID    string          `json:"job_id,omitempty"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt string          `json:"failed_at"` // RFC 3339
}

// deadLetter parks job under dlq:{queue}. Failures are only logged.
func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	entry := DeadLetter{
		Queue:    queue,
		JobID:    job.ID,
		JobType:  job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(entry)
	if err == nil {
		err = p.rdb.LPush(ctx, DLQPrefix+queue, data).Err()
	}
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("job_id", job.ID).Msg("dead letter lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_id", job.ID).
		Str("job_type", job.Type).
		Int("attempts", job.Attempts).
		Str("reason", reason).
		Msg("job moved to dead letter queue")
}

// DLQLength counts the dead letters of queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListDLQ returns up to limit dead letters of queue, newest first. Entries
// that no longer decode are skipped.
func ListDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadLetter, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var e DeadLetter
		if json.Unmarshal([]byte(r), &e) == nil {
			out = append(out, e)
		}
	}
	return out, nil
}
