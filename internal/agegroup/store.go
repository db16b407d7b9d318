package agegroup

import "context"

// Store owns the non-overlap invariant: Create must atomically check the new
// range against every existing group and fail with sentinel.ErrConflict
// without mutating anything when it intersects one.
type Store interface {
	Create(ctx context.Context, group AgeGroup) error
	List(ctx context.Context) ([]AgeGroup, error)
	Delete(ctx context.Context, id string) error
	// FindContaining returns the single group whose range contains age, or
	// sentinel.ErrNotFound. Non-overlap guarantees at most one match.
	FindContaining(ctx context.Context, age int) (AgeGroup, error)
}
