// Package mailqueue hands outbound email jobs to a Redis list consumed by a
// separate mailer process.
package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the list used when none is configured.
const DefaultKey = "mail:queue"

// Job is one email to send. Template names a template the mailer owns.
type Job struct {
	ID         string            `json:"id"`
	From       string            `json:"from"`
	To         string            `json:"to"`
	Template   string            `json:"template"`
	Subject    string            `json:"subject"`
	Data       map[string]string `json:"data,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// Queue pushes jobs onto a Redis list.
type Queue struct {
	rdb *redis.Client
	key string
}

// New builds a queue on rdb. A nil client turns every call into a no-op.
func New(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{rdb: rdb, key: key}
}

// Key returns the Redis list name.
func (q *Queue) Key() string {
	return q.key
}

// Enqueue appends job to the tail of the list.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if q == nil || q.rdb == nil {
		return nil
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	return q.rdb.RPush(ctx, q.key, payload).Err()
}

// Dequeue pops the oldest job, waiting up to timeout. It returns nil, nil
// when nothing arrived in time.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	if q == nil || q.rdb == nil {
		return nil, nil
	}

	res, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of %d elements", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decode mail job: %w", err)
	}
	return &job, nil
}

// Len reports the number of queued jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	if q == nil || q.rdb == nil {
		return 0, nil
	}
	return q.rdb.LLen(ctx, q.key).Result()
}
