// Package dispatch splits fetched dataframes into bounded work items and
// hands them to the shared reconcile queue.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	redis "github.com/redis/go-redis/v9"
)

// WorkItem is one reconcile unit: a chunk of dataframes for one cloud.
// Chunks of the same cloud carry no ordering guarantee and may be
// redelivered, so consumers must process them idempotently.
type WorkItem struct {
	CloudID    snowflake.ID           `json:"cloud_id"`
	Dataframes []cloudkitty.Dataframe `json:"dataframes"`
}

type WorkQueue interface {
	Enqueue(ctx context.Context, item WorkItem) error

	// Dequeue blocks until an item is available or the timeout elapses;
	// a nil item with nil error means the wait timed out.
	Dequeue(ctx context.Context, timeout time.Duration) (*WorkItem, error)
}

type redisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) WorkQueue {
	return &redisQueue{client: client, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, item WorkItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*WorkItem, error) {
	values, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP returns [key, value].
	if len(values) != 2 {
		return nil, errors.New("unexpected queue reply shape")
	}

	var item WorkItem
	if err := json.Unmarshal([]byte(values[1]), &item); err != nil {
		return nil, err
	}
	return &item, nil
}
