package enrollment

import (
	"context"
	"sort"
	"sync"
	"time"

	"enrolld/pkg/platform/sentinel"
)

// InMemoryStore keeps enrollments in a map guarded by a mutex. The mutex makes
// ConditionalUpdate check-and-set atomic, which is all the claim needs.
type InMemoryStore struct {
	mu          sync.RWMutex
	enrollments map[string]Enrollment
	now         func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		enrollments: make(map[string]Enrollment),
		now:         time.Now,
	}
}

func (s *InMemoryStore) Insert(_ context.Context, e Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[e.ID]; ok {
		return sentinel.ErrConflict
	}
	s.enrollments[e.ID] = e
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.enrollments[id]; ok {
		return e, nil
	}
	return Enrollment{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ConditionalUpdate(_ context.Context, id string, from, to Status, fields Update) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok || e.Status != from {
		return 0, nil
	}
	e.Status = to
	if fields.ErrorReason != "" {
		e.ErrorReason = fields.ErrorReason
	}
	if fields.MatchedGroupID != "" {
		e.MatchedGroupID = fields.MatchedGroupID
	}
	e.UpdatedAt = s.now()
	s.enrollments[id] = e
	return 1, nil
}

func (s *InMemoryStore) FindStale(_ context.Context, status Status, olderThan time.Time) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stale []Enrollment
	for _, e := range s.enrollments {
		if e.Status == status && e.UpdatedAt.Before(olderThan) {
			stale = append(stale, e)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })
	return stale, nil
}

// SetClock overrides the store's notion of now. Tests use it to age records
// past the staleness threshold.
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
