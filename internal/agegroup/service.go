package agegroup

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "enrolld/pkg/domainerrors"
	"enrolld/pkg/platform/sentinel"
)

// Service fronts the age-group registry. Handlers and the enrollment worker
// talk to it instead of the store so validation and error translation live in
// one place.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, name string, minAge, maxAge int) (AgeGroup, error) {
	if name == "" {
		return AgeGroup{}, pkgerrors.New(pkgerrors.CodeMissingField, "name is required")
	}
	if minAge < 0 {
		return AgeGroup{}, pkgerrors.New(pkgerrors.CodeMissingField, "min_age must be non-negative")
	}
	if minAge > maxAge {
		return AgeGroup{}, pkgerrors.New(pkgerrors.CodeMissingField, "min_age cannot exceed max_age")
	}

	group := AgeGroup{
		ID:     uuid.NewString(),
		Name:   name,
		MinAge: minAge,
		MaxAge: maxAge,
	}
	if err := s.store.Create(ctx, group); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return AgeGroup{}, pkgerrors.New(pkgerrors.CodeOverlap,
				fmt.Sprintf("age range [%d,%d] overlaps an existing group", minAge, maxAge))
		}
		return AgeGroup{}, err
	}
	return group, nil
}

func (s *Service) List(ctx context.Context) ([]AgeGroup, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "age group not found")
		}
		return err
	}
	return nil
}

// FindContaining resolves the group covering age. Callers distinguish "no
// group" (sentinel.ErrNotFound) from infrastructure faults, so the sentinel is
// passed through untranslated.
func (s *Service) FindContaining(ctx context.Context, age int) (AgeGroup, error) {
	return s.store.FindContaining(ctx, age)
}
