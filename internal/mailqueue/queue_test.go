package mailqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test:mail"), mr
}

func TestQueue_NilClientIsNoop(t *testing.T) {
	q := New(nil, "")
	assert.Equal(t, DefaultKey, q.Key())
	assert.NoError(t, q.Enqueue(context.Background(), Job{To: "a@example.com"}))

	job, err := q.Dequeue(context.Background(), time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestQueue_EnqueueDequeueFIFO(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Job{To: "first@example.com", Template: "listing_status_changed"}))
	require.NoError(t, q.Enqueue(ctx, Job{To: "second@example.com", Template: "user_suspended"}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("test:mail"))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "first@example.com", job.To)
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.EnqueuedAt.IsZero())

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "user_suspended", job.Template)
}

func TestQueue_DequeueRejectsGarbage(t *testing.T) {
	q, mr := newTestQueue(t)
	_, err := mr.Push("test:mail", "{not json")
	require.NoError(t, err)

	job, err := q.Dequeue(context.Background(), time.Second)
	assert.Error(t, err)
	assert.Nil(t, job)
}
