//go:build integration

package enrollment_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"enrolld/internal/enrollment"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/testutil/containers"
)

type PostgresEnrollmentSuite struct {
	suite.Suite
	db    *sql.DB
	store *enrollment.PostgresStore
}

func TestPostgresEnrollmentSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEnrollmentSuite))
}

func (s *PostgresEnrollmentSuite) SetupSuite() {
	s.db = containers.NewPostgresDB(s.T())
	s.store = enrollment.NewPostgresStore(s.db)
}

func (s *PostgresEnrollmentSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE enrollments, age_groups, users`)
	s.Require().NoError(err)
}

func newQueued(id string, at time.Time) enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:        id,
		Name:      "Joao Silva",
		Age:       30,
		CPF:       "09702414458",
		Status:    enrollment.StatusQueued,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func (s *PostgresEnrollmentSuite) TestInsertGetRoundTrip() {
	ctx := context.Background()
	id := uuid.NewString()
	s.Require().NoError(s.store.Insert(ctx, newQueued(id, time.Now().UTC())))

	e, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(enrollment.StatusQueued, e.Status)
	s.Empty(e.ErrorReason)
	s.Empty(e.MatchedGroupID)

	_, err = s.store.Get(ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresEnrollmentSuite) TestConditionalUpdateAffectedCount() {
	ctx := context.Background()
	id := uuid.NewString()
	s.Require().NoError(s.store.Insert(ctx, newQueued(id, time.Now().UTC())))

	affected, err := s.store.ConditionalUpdate(ctx, id, enrollment.StatusQueued, enrollment.StatusProcessing, enrollment.Update{})
	s.Require().NoError(err)
	s.EqualValues(1, affected)

	affected, err = s.store.ConditionalUpdate(ctx, id, enrollment.StatusQueued, enrollment.StatusProcessing, enrollment.Update{})
	s.Require().NoError(err)
	s.EqualValues(0, affected, "second claim loses")

	affected, err = s.store.ConditionalUpdate(ctx, id, enrollment.StatusProcessing, enrollment.StatusRejected,
		enrollment.Update{ErrorReason: enrollment.ReasonNoMatchingGroup})
	s.Require().NoError(err)
	s.EqualValues(1, affected)

	e, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(enrollment.StatusRejected, e.Status)
	s.Equal(enrollment.ReasonNoMatchingGroup, e.ErrorReason)
}

func (s *PostgresEnrollmentSuite) TestConcurrentClaimsAdmitOne() {
	ctx := context.Background()
	id := uuid.NewString()
	s.Require().NoError(s.store.Insert(ctx, newQueued(id, time.Now().UTC())))

	const claimers = 8
	var wg sync.WaitGroup
	results := make([]int64, claimers)
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.store.ConditionalUpdate(ctx, id,
				enrollment.StatusQueued, enrollment.StatusProcessing, enrollment.Update{})
		}(i)
	}
	wg.Wait()

	var wins int64
	for i := range results {
		s.Require().NoError(errs[i])
		wins += results[i]
	}
	s.EqualValues(1, wins)
}

func (s *PostgresEnrollmentSuite) TestFindStale() {
	ctx := context.Background()
	oldID := uuid.NewString()
	s.Require().NoError(s.store.Insert(ctx, newQueued(oldID, time.Now().UTC().Add(-time.Hour))))
	s.Require().NoError(s.store.Insert(ctx, newQueued(uuid.NewString(), time.Now().UTC())))

	stale, err := s.store.FindStale(ctx, enrollment.StatusQueued, time.Now().UTC().Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().Len(stale, 1)
	s.Equal(oldID, stale[0].ID)
}
