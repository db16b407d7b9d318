package enrollment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolld/pkg/platform/sentinel"
)

func queuedEnrollment(id string, at time.Time) Enrollment {
	return Enrollment{
		ID:        id,
		Name:      "Joao",
		Age:       30,
		CPF:       "09702414458",
		Status:    StatusQueued,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestInMemoryStore_InsertAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	e := queuedEnrollment("e1", time.Now())
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	assert.ErrorIs(t, store.Insert(ctx, e), sentinel.ErrConflict)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestConditionalUpdate_TransitionsAndAffectedCount(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, queuedEnrollment("e1", time.Now())))

	affected, err := store.ConditionalUpdate(ctx, "e1", StatusQueued, StatusProcessing, Update{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// Same transition again: the record is no longer queued.
	affected, err = store.ConditionalUpdate(ctx, "e1", StatusQueued, StatusProcessing, Update{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = store.ConditionalUpdate(ctx, "e1", StatusProcessing, StatusCompleted,
		Update{MatchedGroupID: "g1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	e, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, e.Status)
	assert.Equal(t, "g1", e.MatchedGroupID)

	// Terminal states are never left.
	affected, err = store.ConditionalUpdate(ctx, "e1", StatusProcessing, StatusFailed, Update{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestConditionalUpdate_UnknownIDAffectsZero(t *testing.T) {
	store := NewInMemoryStore()
	affected, err := store.ConditionalUpdate(context.Background(), "ghost", StatusQueued, StatusProcessing, Update{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestConditionalUpdate_ConcurrentClaimsAdmitOne(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, queuedEnrollment("e1", time.Now())))

	const claimers = 32
	var wg sync.WaitGroup
	results := make([]int64, claimers)
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.ConditionalUpdate(ctx, "e1", StatusQueued, StatusProcessing, Update{})
		}(i)
	}
	wg.Wait()

	var wins int64
	for i := range results {
		require.NoError(t, errs[i])
		wins += results[i]
	}
	assert.EqualValues(t, 1, wins, "exactly one concurrent claim may succeed")
}

func TestFindStale(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)
	fresh := time.Now()
	require.NoError(t, store.Insert(ctx, queuedEnrollment("old", old)))
	require.NoError(t, store.Insert(ctx, queuedEnrollment("fresh", fresh)))

	stale, err := store.FindStale(ctx, StatusQueued, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)

	stale, err = store.FindStale(ctx, StatusProcessing, time.Now())
	require.NoError(t, err)
	assert.Empty(t, stale)
}
