//go:build integration

package agegroup_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"enrolld/internal/agegroup"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/testutil/containers"
)

type PostgresAgeGroupSuite struct {
	suite.Suite
	db    *sql.DB
	store *agegroup.PostgresStore
}

func TestPostgresAgeGroupSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAgeGroupSuite))
}

func (s *PostgresAgeGroupSuite) SetupSuite() {
	s.db = containers.NewPostgresDB(s.T())
	s.store = agegroup.NewPostgresStore(s.db)
}

func (s *PostgresAgeGroupSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE age_groups`)
	s.Require().NoError(err)
}

func group(name string, min, max int) agegroup.AgeGroup {
	return agegroup.AgeGroup{ID: uuid.NewString(), Name: name, MinAge: min, MaxAge: max}
}

func (s *PostgresAgeGroupSuite) TestCreateRejectsOverlapInSQL() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, group("Crianca", 0, 12)))

	err := s.store.Create(ctx, group("Conflito", 10, 20))
	s.ErrorIs(err, sentinel.ErrConflict)

	groups, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(groups, 1, "failed insert must not mutate the table")
}

func (s *PostgresAgeGroupSuite) TestListOrdersByMinAge() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, group("Adulto", 18, 99)))
	s.Require().NoError(s.store.Create(ctx, group("Crianca", 0, 12)))

	groups, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal("Crianca", groups[0].Name)
	s.Equal("Adulto", groups[1].Name)
}

func (s *PostgresAgeGroupSuite) TestDeleteAndFindContaining() {
	ctx := context.Background()
	adulto := group("Adulto", 18, 99)
	s.Require().NoError(s.store.Create(ctx, adulto))

	found, err := s.store.FindContaining(ctx, 30)
	s.Require().NoError(err)
	s.Equal(adulto.ID, found.ID)

	s.Require().NoError(s.store.Delete(ctx, adulto.ID))
	s.ErrorIs(s.store.Delete(ctx, adulto.ID), sentinel.ErrNotFound)

	_, err = s.store.FindContaining(ctx, 30)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
