package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/queue"
	"enrolld/pkg/cpf"
	pkgerrors "enrolld/pkg/domainerrors"
	"enrolld/pkg/platform/sentinel"
)

// Service is the submission gateway. It validates synchronously, persists the
// enrollment as queued, publishes a reference, and returns immediately; the
// terminal outcome is only ever observable through Status.
type Service struct {
	store   Store
	queue   queue.Queue
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store Store, q queue.Queue, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		queue:   q,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Submit runs structural then CPF validation, inserts the record, and
// publishes its reference. Validation failures persist nothing. Insert and
// publish are not atomic: when the publish fails the enrollment is left in
// queued and the staleness sweep republishes it, so the caller still gets a
// queued result rather than an error.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := validate(req); err != nil {
		return SubmitResult{}, err
	}

	now := s.now()
	e := Enrollment{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Age:       *req.Age,
		CPF:       cpf.Normalize(req.CPF),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return SubmitResult{}, err
	}
	s.metrics.IncSubmitted()

	if err := s.queue.Publish(ctx, queue.Message{EnrollmentID: e.ID}); err != nil {
		// Recoverable: the record is queued and the sweep will republish.
		s.logger.WarnContext(ctx, "publish failed, enrollment awaits sweep",
			"enrollment_id", e.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "enrollment queued", "enrollment_id", e.ID, "age", e.Age)
	return SubmitResult{EnrollmentID: e.ID, Status: StatusQueued}, nil
}

// Status returns the current enrollment record for polling.
func (s *Service) Status(ctx context.Context, id string) (Enrollment, error) {
	e, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Enrollment{}, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
	}
	if err != nil {
		return Enrollment{}, err
	}
	return e, nil
}

// validate enforces the fixed structural contract: name non-empty, age
// present and non-negative, cpf exactly 11 digits once punctuation is
// stripped. The CPF checksum is checked after structure so callers get the
// more specific error first.
func validate(req SubmitRequest) error {
	if req.Name == "" {
		return pkgerrors.New(pkgerrors.CodeMissingField, "name is required")
	}
	if req.Age == nil {
		return pkgerrors.New(pkgerrors.CodeMissingField, "age is required")
	}
	if *req.Age < 0 {
		return pkgerrors.New(pkgerrors.CodeMissingField, "age must be non-negative")
	}
	if len(cpf.Normalize(req.CPF)) != 11 {
		return pkgerrors.New(pkgerrors.CodeMissingField, "cpf must have 11 digits")
	}
	if !cpf.Valid(req.CPF) {
		return pkgerrors.New(pkgerrors.CodeInvalidCPF, "cpf check digits do not match")
	}
	return nil
}
