package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	// DefaultTopic carries enrollment references.
	DefaultTopic = "enrollments"
	// DefaultDeadLetterTopic parks failed messages.
	DefaultDeadLetterTopic = "enrollments.dlq"
)

// Kafka implements the queue on a Kafka topic with a consumer group. All
// gateway instances produce with the enrollment id as the record key, so a
// given enrollment stays on one partition and ordering is FIFO per producer.
// A poll may return more records than the caller asked for; the surplus is
// buffered and handed out on subsequent Consume calls.
type Kafka struct {
	client   *kgo.Client
	topic    string
	dlqTopic string

	mu      sync.Mutex
	pending []Message
}

// NewKafka connects to the brokers, makes sure both topics exist, and joins
// the consumer group. Competing workers share the group so partitions are
// spread across them.
func NewKafka(ctx context.Context, brokers []string, topic, dlqTopic, group string) (*Kafka, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	if dlqTopic == "" {
		dlqTopic = DefaultDeadLetterTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if err := ensureTopics(ctx, client, topic, dlqTopic); err != nil {
		client.Close()
		return nil, err
	}
	return &Kafka{client: client, topic: topic, dlqTopic: dlqTopic}, nil
}

func ensureTopics(ctx context.Context, client *kgo.Client, topics ...string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps {
		// An already-existing topic is fine, anything else is not.
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	return k.produce(ctx, k.topic, msg)
}

func (k *Kafka) PublishDead(ctx context.Context, msg Message) error {
	return k.produce(ctx, k.dlqTopic, msg)
}

func (k *Kafka) produce(ctx context.Context, topic string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	record := &kgo.Record{Topic: topic, Key: []byte(msg.EnrollmentID), Value: payload}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (k *Kafka) Consume(ctx context.Context, timeout time.Duration) (Message, bool, error) {
	k.mu.Lock()
	if len(k.pending) > 0 {
		msg := k.pending[0]
		k.pending = k.pending[1:]
		k.mu.Unlock()
		return msg, true, nil
	}
	k.mu.Unlock()

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fetches := k.client.PollFetches(pollCtx)
	if err := firstFetchErr(fetches); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Message{}, false, nil
		}
		return Message{}, false, fmt.Errorf("poll %s: %w", k.topic, err)
	}

	var batch []Message
	iter := fetches.RecordIter()
	for !iter.Done() {
		record := iter.Next()
		var msg Message
		if err := json.Unmarshal(record.Value, &msg); err != nil {
			// A malformed record cannot be routed to an enrollment;
			// skip it rather than wedge the partition.
			continue
		}
		batch = append(batch, msg)
	}
	if len(batch) == 0 {
		return Message{}, false, nil
	}

	k.mu.Lock()
	k.pending = append(k.pending, batch[1:]...)
	k.mu.Unlock()
	return batch[0], true, nil
}

func (k *Kafka) Close() {
	k.client.Close()
}

func firstFetchErr(fetches kgo.Fetches) error {
	for _, err := range fetches.Errors() {
		return err.Err
	}
	return nil
}
