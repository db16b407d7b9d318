package enrollment

import (
	"context"
	"time"
)

// Update carries the fields a conditional transition may set alongside the
// status. Empty strings leave the column null.
type Update struct {
	ErrorReason    string
	MatchedGroupID string
}

// Store persists enrollments. ConditionalUpdate is the single concurrency
// primitive of the pipeline: it must atomically transition from→to and report
// how many records changed, so competing workers and queue redeliveries
// resolve to exactly one effective processing pass.
type Store interface {
	Insert(ctx context.Context, e Enrollment) error
	Get(ctx context.Context, id string) (Enrollment, error)
	// ConditionalUpdate applies `set status = to, fields` where the record
	// currently has status from. It returns the affected count (0 or 1);
	// zero means the caller lost the race or the work is already done.
	ConditionalUpdate(ctx context.Context, id string, from, to Status, fields Update) (int64, error)
	// FindStale lists enrollments sitting in status since before olderThan,
	// oldest first. The staleness sweep feeds on it.
	FindStale(ctx context.Context, status Status, olderThan time.Time) ([]Enrollment, error)
}
