package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type queueFake struct {
	items   []WorkItem
	failAll bool
}

func (q *queueFake) Enqueue(_ context.Context, item WorkItem) error {
	if q.failAll {
		return context.DeadlineExceeded
	}
	q.items = append(q.items, item)
	return nil
}

func (q *queueFake) Dequeue(context.Context, time.Duration) (*WorkItem, error) {
	if len(q.items) == 0 {
		return nil, nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	return &item, nil
}

func frames(n int) []cloudkitty.Dataframe {
	out := make([]cloudkitty.Dataframe, n)
	for i := range out {
		begin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
		out[i] = cloudkitty.Dataframe{
			Begin: cloudkitty.Timestamp{Time: begin},
			End:   cloudkitty.Timestamp{Time: begin.Add(time.Hour)},
		}
	}
	return out
}

func newTestDispatcher(queue WorkQueue, chunkSize int) Dispatcher {
	return NewDispatcher(DispatcherParam{
		Log:    zap.NewNop(),
		Config: config.Config{DataframesPerChunk: chunkSize},
		Queue:  queue,
	})
}

func TestDispatch_ChunksPreserveOrder(t *testing.T) {
	queue := &queueFake{}
	d := newTestDispatcher(queue, 2)

	input := frames(5)
	chunks, err := d.Dispatch(context.Background(), 42, input)
	require.NoError(t, err)
	assert.Equal(t, 3, chunks)

	require.Len(t, queue.items, 3)
	assert.Len(t, queue.items[0].Dataframes, 2)
	assert.Len(t, queue.items[1].Dataframes, 2)
	assert.Len(t, queue.items[2].Dataframes, 1)

	var reassembled []cloudkitty.Dataframe
	for _, item := range queue.items {
		assert.EqualValues(t, 42, item.CloudID)
		reassembled = append(reassembled, item.Dataframes...)
	}
	require.Len(t, reassembled, len(input))
	for i := range input {
		assert.True(t, reassembled[i].Begin.Equal(input[i].Begin.Time))
	}
}

func TestDispatch_ExactMultiple(t *testing.T) {
	queue := &queueFake{}
	d := newTestDispatcher(queue, 2)

	chunks, err := d.Dispatch(context.Background(), 42, frames(4))
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)
	require.Len(t, queue.items, 2)
	assert.Len(t, queue.items[1].Dataframes, 2)
}

func TestDispatch_EmptyInput(t *testing.T) {
	queue := &queueFake{}
	d := newTestDispatcher(queue, 100)

	chunks, err := d.Dispatch(context.Background(), 42, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, chunks)
	assert.Empty(t, queue.items)
}

func TestDispatch_EnqueueFailureStopsRun(t *testing.T) {
	queue := &queueFake{failAll: true}
	d := newTestDispatcher(queue, 2)

	chunks, err := d.Dispatch(context.Background(), 42, frames(5))
	require.Error(t, err)
	assert.Equal(t, 0, chunks)
}

func TestDispatch_DefaultChunkSize(t *testing.T) {
	queue := &queueFake{}
	// Zero config falls back to the stock chunk size.
	d := newTestDispatcher(queue, 0)

	chunks, err := d.Dispatch(context.Background(), 42, frames(150))
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)
	require.Len(t, queue.items, 2)
	assert.Len(t, queue.items[0].Dataframes, 100)
	assert.Len(t, queue.items[1].Dataframes, 50)
}
