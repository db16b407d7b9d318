package queue

import (
	"context"
	"time"
)

// Memory is a channel-backed queue for tests and single-process runs. The
// buffered channel keeps Publish non-blocking until the buffer fills, which
// mirrors how the broker-backed implementations decouple gateway and worker.
type Memory struct {
	messages chan Message
	dead     chan Message
}

func NewMemory(buffer int) *Memory {
	return &Memory{
		messages: make(chan Message, buffer),
		dead:     make(chan Message, buffer),
	}
}

func (m *Memory) Publish(ctx context.Context, msg Message) error {
	select {
	case m.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(ctx context.Context, timeout time.Duration) (Message, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-m.messages:
		return msg, true, nil
	case <-timer.C:
		return Message{}, false, nil
	case <-ctx.Done():
		return Message{}, false, ctx.Err()
	}
}

func (m *Memory) PublishDead(ctx context.Context, msg Message) error {
	select {
	case m.dead <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DeadLetters exposes the dead-letter channel so tests can assert on parked
// messages.
func (m *Memory) DeadLetters() <-chan Message {
	return m.dead
}
