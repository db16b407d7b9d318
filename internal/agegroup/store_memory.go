package agegroup

import (
	"context"
	"sort"
	"sync"

	"enrolld/pkg/platform/sentinel"
)

// InMemoryStore keeps groups in a map guarded by a RWMutex. The overlap check
// runs under the write lock, so concurrent Creates cannot both slip past it.
type InMemoryStore struct {
	mu     sync.RWMutex
	groups map[string]AgeGroup
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{groups: make(map[string]AgeGroup)}
}

func (s *InMemoryStore) Create(_ context.Context, group AgeGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.groups {
		if existing.Overlaps(group) {
			return sentinel.ErrConflict
		}
	}
	s.groups[group.ID] = group
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]AgeGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]AgeGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].MinAge < groups[j].MinAge })
	return groups, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.groups, id)
	return nil
}

func (s *InMemoryStore) FindContaining(_ context.Context, age int) (AgeGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Contains(age) {
			return g, nil
		}
	}
	return AgeGroup{}, sentinel.ErrNotFound
}
