// Package queue provides the enrollment message channel. Delivery is
// at-least-once: consumers must tolerate redelivery (the store-level claim is
// what makes processing idempotent), and ordering is best-effort FIFO per
// producer.
package queue

import (
	"context"
	"time"
)

// Message references an enrollment awaiting processing. It deliberately
// carries only the id; workers re-read the record and the current age groups
// so a stale payload can never win over the store.
type Message struct {
	EnrollmentID string `json:"enrollment_id"`
}

type Queue interface {
	Publish(ctx context.Context, msg Message) error
	// Consume blocks up to timeout for the next message. The boolean is
	// false when the timeout elapsed with nothing to deliver; that is not
	// an error, it is how workers observe shutdown between messages.
	Consume(ctx context.Context, timeout time.Duration) (Message, bool, error)
	// PublishDead parks a message on the dead-letter destination for
	// operator inspection after its enrollment was marked failed.
	PublishDead(ctx context.Context, msg Message) error
}
