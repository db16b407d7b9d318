package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"enrolld/internal/agegroup"
	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/queue"
	"enrolld/internal/user"
	"enrolld/pkg/platform/sentinel"
)

// GroupRegistry is the worker's view of the age-group collaborator. Lookups
// always hit the current registry; the worker never caches results across
// messages, so concurrent group edits stay correct.
type GroupRegistry interface {
	FindContaining(ctx context.Context, age int) (agegroup.AgeGroup, error)
}

// Worker is one competing consumer. Any number of instances can run against
// the same queue: the conditional claim on the store is the only coordination
// between them.
type Worker struct {
	store          Store
	users          user.Store
	groups         GroupRegistry
	queue          queue.Queue
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	receiveTimeout time.Duration
	errorBackoff   time.Duration
}

func NewWorker(store Store, users user.Store, groups GroupRegistry, q queue.Queue, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		store:          store,
		users:          users,
		groups:         groups,
		queue:          q,
		logger:         logger,
		metrics:        m,
		tracer:         otel.Tracer("enrolld/worker"),
		receiveTimeout: 5 * time.Second,
		errorBackoff:   time.Second,
	}
}

// SetReceiveTimeout bounds each blocking dequeue. Shorter timeouts make the
// loop observe cancellation sooner.
func (w *Worker) SetReceiveTimeout(d time.Duration) {
	w.receiveTimeout = d
}

// Run consumes until the context is cancelled. Dequeue is the loop's only
// blocking call; transient consume errors are logged and retried after a
// short backoff instead of killing the process.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, ok, err := w.queue.Consume(ctx, w.receiveTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.ErrorContext(ctx, "consume failed", "error", err)
			select {
			case <-time.After(w.errorBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if !ok {
			continue
		}
		w.Process(ctx, msg)
	}
}

// Process handles one delivery end to end. It never returns an error: every
// fault path lands the enrollment in a terminal or sweep-recoverable state,
// and redeliveries of finished work are dropped at the claim.
func (w *Worker) Process(ctx context.Context, msg queue.Message) {
	ctx, span := w.tracer.Start(ctx, "enrollment.process",
		trace.WithAttributes(attribute.String("enrollment.id", msg.EnrollmentID)))
	defer span.End()

	if _, err := uuid.Parse(msg.EnrollmentID); err != nil {
		w.logger.WarnContext(ctx, "dropping message with malformed enrollment id",
			"enrollment_id", msg.EnrollmentID)
		return
	}

	start := time.Now()

	// The claim: exactly one consumer moves queued→processing. Zero affected
	// records means another consumer owns it or it is already terminal, so
	// this delivery is silently dropped.
	claimed, err := w.store.ConditionalUpdate(ctx, msg.EnrollmentID, StatusQueued, StatusProcessing, Update{})
	if err != nil {
		// The record is still queued; the sweep will republish it.
		w.logger.ErrorContext(ctx, "claim failed", "enrollment_id", msg.EnrollmentID, "error", err)
		return
	}
	if claimed == 0 {
		w.metrics.IncClaimsLost()
		w.logger.DebugContext(ctx, "delivery dropped, enrollment already claimed",
			"enrollment_id", msg.EnrollmentID)
		return
	}

	e, err := w.store.Get(ctx, msg.EnrollmentID)
	if err != nil {
		w.fail(ctx, msg)
		return
	}

	group, err := w.groups.FindContaining(ctx, e.Age)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		w.reject(ctx, e)
	case err != nil:
		w.fail(ctx, msg)
	default:
		w.complete(ctx, e, group, msg)
	}
	w.metrics.ObserveProcessingDuration(time.Since(start))
}

func (w *Worker) complete(ctx context.Context, e Enrollment, group agegroup.AgeGroup, msg queue.Message) {
	u := user.User{
		ID:        uuid.NewString(),
		Name:      e.Name,
		Age:       e.Age,
		CPF:       e.CPF,
		GroupID:   group.ID,
		CreatedAt: time.Now(),
	}
	if err := w.users.Save(ctx, u); err != nil {
		w.logger.ErrorContext(ctx, "user creation failed", "enrollment_id", e.ID, "error", err)
		w.fail(ctx, msg)
		return
	}

	if _, err := w.store.ConditionalUpdate(ctx, e.ID, StatusProcessing, StatusCompleted,
		Update{MatchedGroupID: group.ID}); err != nil {
		w.logger.ErrorContext(ctx, "completed write failed, awaiting sweep",
			"enrollment_id", e.ID, "error", err)
		return
	}
	w.metrics.IncOutcome(string(StatusCompleted))
	w.logger.InfoContext(ctx, "enrollment completed",
		"enrollment_id", e.ID, "group_id", group.ID, "user_id", u.ID)
}

func (w *Worker) reject(ctx context.Context, e Enrollment) {
	if _, err := w.store.ConditionalUpdate(ctx, e.ID, StatusProcessing, StatusRejected,
		Update{ErrorReason: ReasonNoMatchingGroup}); err != nil {
		w.logger.ErrorContext(ctx, "rejected write failed, awaiting sweep",
			"enrollment_id", e.ID, "error", err)
		return
	}
	w.metrics.IncOutcome(string(StatusRejected))
	w.logger.InfoContext(ctx, "enrollment rejected, no matching age group",
		"enrollment_id", e.ID, "age", e.Age)
}

// fail records an infrastructure fault and parks the message on the
// dead-letter destination. Failed enrollments are retried only via the sweep,
// never in place.
func (w *Worker) fail(ctx context.Context, msg queue.Message) {
	if _, err := w.store.ConditionalUpdate(ctx, msg.EnrollmentID, StatusProcessing, StatusFailed,
		Update{ErrorReason: ReasonProcessingError}); err != nil {
		w.logger.ErrorContext(ctx, "failed write failed, awaiting sweep",
			"enrollment_id", msg.EnrollmentID, "error", err)
		return
	}
	w.metrics.IncOutcome(string(StatusFailed))
	if err := w.queue.PublishDead(ctx, msg); err != nil {
		w.logger.ErrorContext(ctx, "dead-letter publish failed",
			"enrollment_id", msg.EnrollmentID, "error", err)
	}
	w.logger.WarnContext(ctx, "enrollment failed", "enrollment_id", msg.EnrollmentID)
}
