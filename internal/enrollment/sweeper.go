package enrollment

import (
	"context"
	"log/slog"
	"time"

	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/queue"
)

// Sweeper is the recovery path for the two accepted gaps in the pipeline: a
// publish lost after insert (record stuck in queued) and a worker crash
// between claim and terminal write (record stuck in processing). It runs
// periodically and republishes references for both.
type Sweeper struct {
	store      Store
	queue      queue.Queue
	logger     *slog.Logger
	metrics    *metrics.Metrics
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

func NewSweeper(store Store, q queue.Queue, logger *slog.Logger, m *metrics.Metrics, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		store:      store,
		queue:      q,
		logger:     logger,
		metrics:    m,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// Sweep performs one pass. Stale queued enrollments are republished as-is;
// stale processing enrollments are first reset to queued with the same
// conditional update the claim uses, so a sweep racing a live worker cannot
// clobber a terminal write.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := s.now().Add(-s.staleAfter)

	stuck, err := s.store.FindStale(ctx, StatusQueued, cutoff)
	if err != nil {
		return err
	}
	for _, e := range stuck {
		if err := s.queue.Publish(ctx, queue.Message{EnrollmentID: e.ID}); err != nil {
			s.logger.WarnContext(ctx, "sweep republish failed", "enrollment_id", e.ID, "error", err)
			continue
		}
		s.metrics.IncSweepRequeued(string(StatusQueued))
		s.logger.InfoContext(ctx, "republished stale queued enrollment", "enrollment_id", e.ID)
	}

	abandoned, err := s.store.FindStale(ctx, StatusProcessing, cutoff)
	if err != nil {
		return err
	}
	for _, e := range abandoned {
		reset, err := s.store.ConditionalUpdate(ctx, e.ID, StatusProcessing, StatusQueued, Update{})
		if err != nil {
			s.logger.WarnContext(ctx, "sweep reset failed", "enrollment_id", e.ID, "error", err)
			continue
		}
		if reset == 0 {
			// The owning worker finished between FindStale and here.
			continue
		}
		if err := s.queue.Publish(ctx, queue.Message{EnrollmentID: e.ID}); err != nil {
			// Now stuck in queued; the next pass picks it up again.
			s.logger.WarnContext(ctx, "sweep republish failed", "enrollment_id", e.ID, "error", err)
			continue
		}
		s.metrics.IncSweepRequeued(string(StatusProcessing))
		s.logger.InfoContext(ctx, "requeued abandoned processing enrollment", "enrollment_id", e.ID)
	}
	return nil
}
