package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultQueueKey is the Redis list carrying enrollment references.
	DefaultQueueKey = "enrollments_queue"
	// DefaultDeadLetterKey parks messages whose processing failed.
	DefaultDeadLetterKey = "enrollments_dlq"
)

// Redis implements the queue as a Redis list: LPUSH to publish, BRPOP with a
// timeout to consume. Redis list pops are atomic, so competing workers never
// see the same element twice from a single delivery; redelivery only happens
// through the staleness sweep.
type Redis struct {
	client   *redis.Client
	queueKey string
	dlqKey   string
}

func NewRedis(client *redis.Client, queueKey, dlqKey string) *Redis {
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	if dlqKey == "" {
		dlqKey = DefaultDeadLetterKey
	}
	return &Redis{client: client, queueKey: queueKey, dlqKey: dlqKey}
}

func (r *Redis) Publish(ctx context.Context, msg Message) error {
	return r.push(ctx, r.queueKey, msg)
}

func (r *Redis) PublishDead(ctx context.Context, msg Message) error {
	return r.push(ctx, r.dlqKey, msg)
}

func (r *Redis) push(ctx context.Context, key string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	if err := r.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Consume(ctx context.Context, timeout time.Duration) (Message, bool, error) {
	res, err := r.client.BRPop(ctx, timeout, r.queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, fmt.Errorf("consume from %s: %w", r.queueKey, err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return Message{}, false, fmt.Errorf("consume from %s: unexpected reply length %d", r.queueKey, len(res))
	}
	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return Message{}, false, fmt.Errorf("decode queue message: %w", err)
	}
	return msg, true, nil
}
