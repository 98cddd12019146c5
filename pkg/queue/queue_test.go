package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaythaHQ/raytha-sub006/internal/utils"
	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

type exportArgs struct {
	ContentType string `json:"content_type"`
	ViewID      string `json:"view_id"`
}

func newTestQueue(opts *Options) (*Queue, *database.Memory) {
	mem := database.NewMemory()
	return New(database.NewQueueDB(mem), opts, nil), mem
}

func TestEnqueue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	id, err := q.Enqueue(ctx, "export-csv", &exportArgs{ContentType: "posts", ViewID: "v1"})
	require.NoError(t, err)
	assert.True(t, utils.IsValidID(id))

	j, err := q.Job(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "export-csv", j.Kind)
	assert.Equal(t, structs.ENQUEUED, j.Status)
	assert.Equal(t, 0, j.PercentComplete)
	assert.Equal(t, 0, j.TaskStep)
	assert.Nil(t, j.CompletionTime)
	assert.JSONEq(t, `{"content_type":"posts","view_id":"v1"}`, string(j.Args))

	select {
	case <-q.Wake():
	default:
		t.Fatal("expected a wake signal after enqueue")
	}
}

func TestEnqueueInvalid(t *testing.T) {
	q, _ := newTestQueue(nil)

	_, err := q.Enqueue(context.Background(), "", nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArg)

	_, err = q.Enqueue(context.Background(), "k", map[string]interface{}{"f": func() {}})
	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestWakeDoesNotBlock(t *testing.T) {
	q, _ := newTestQueue(&Options{WakeBuffer: 1})

	for i := 0; i < 5; i++ {
		_, err := q.Enqueue(context.Background(), "k", i)
		require.NoError(t, err)
	}
	assert.Len(t, q.Wake(), 1)
}

func TestDequeueAndFinish(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		Name         string
		Retry        *RetryPolicy
		Result       error
		ExpectStatus structs.Status
		ExpectMsg    string
	}{
		{"Success", nil, nil, structs.COMPLETE, ""},
		{"Error", nil, fmt.Errorf("boom"), structs.ERROR, "boom"},
		{"TransientWithoutPolicy", nil, Transient(fmt.Errorf("flaky")), structs.ERROR, "flaky"},
		{"TransientWithPolicy", &RetryPolicy{MaxRetries: 1}, Transient(fmt.Errorf("flaky")), structs.ENQUEUED, ""},
		{"PermanentWithPolicy", &RetryPolicy{MaxRetries: 1}, fmt.Errorf("bad args"), structs.ERROR, "bad args"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			q, _ := newTestQueue(&Options{Retry: c.Retry})

			id, err := q.Enqueue(ctx, "k", nil)
			require.NoError(t, err)

			j := q.Dequeue(ctx)
			require.NotNil(t, j)
			assert.Equal(t, id, j.ID)
			assert.Equal(t, structs.PROCESSING, j.Status)
			assert.Nil(t, q.Dequeue(ctx))

			require.NoError(t, q.Finish(ctx, j, c.Result))

			stored, err := q.Job(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, c.ExpectStatus, stored.Status)
			assert.Equal(t, c.ExpectMsg, stored.ErrorMessage)
			assert.Equal(t, structs.IsFinalStatus(stored.Status), stored.CompletionTime != nil)
		})
	}
}

func TestRetryExhausted(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(&Options{Retry: &RetryPolicy{MaxRetries: 2, Backoff: &Constant{}}})

	id, err := q.Enqueue(ctx, "k", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		j := q.Dequeue(ctx)
		require.NotNil(t, j, "attempt %d", i)
		require.NoError(t, q.Finish(ctx, j, Transient(fmt.Errorf("flaky"))))
	}

	assert.Nil(t, q.Dequeue(ctx))

	stored, err := q.Job(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, structs.ERROR, stored.Status)
	assert.Equal(t, 2, stored.NumberOfRetries)
}

func TestRetryDelay(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(&Options{Retry: &RetryPolicy{MaxRetries: 1, Backoff: &Constant{Interval: time.Hour}}})

	_, err := q.Enqueue(ctx, "k", nil)
	require.NoError(t, err)

	j := q.Dequeue(ctx)
	require.NotNil(t, j)
	require.NoError(t, q.Finish(ctx, j, Transient(fmt.Errorf("flaky"))))

	// not due for an hour
	assert.Nil(t, q.Dequeue(ctx))
}

func TestMetaProgress(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(nil)

	id, err := q.Enqueue(ctx, "export-csv", &exportArgs{ContentType: "posts"})
	require.NoError(t, err)

	j := q.Dequeue(ctx)
	require.NotNil(t, j)
	meta := q.Meta(j)

	args := &exportArgs{}
	require.NoError(t, meta.Decode(args))
	assert.Equal(t, "posts", args.ContentType)
	assert.Equal(t, id, meta.ID())

	require.NoError(t, meta.AppendInfo(ctx, "loaded 10 rows"))
	require.NoError(t, meta.NextStep(ctx))
	require.NoError(t, meta.SetPercent(ctx, 50))
	require.NoError(t, meta.AppendInfo(ctx, "wrote file"))

	stored, err := q.Job(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "loaded 10 rows\nwrote file", stored.StatusInfo)
	assert.Equal(t, 50, stored.PercentComplete)
	assert.Equal(t, 1, stored.TaskStep)
	assert.Equal(t, stored.StatusInfo, j.StatusInfo)

	require.NoError(t, q.Complete(ctx, j))
	assert.ErrorIs(t, meta.AppendInfo(ctx, "late"), errors.ErrInvalidState)
}

func TestMetaDecodeBadArgs(t *testing.T) {
	meta := &Meta{Job: &structs.Job{ID: "a", Args: []byte(`[1,2]`)}}

	err := meta.Decode(&exportArgs{})

	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}
