package recommend

import (
	"context"
	"testing"
	"time"

	"freshCart/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidates() []domain.RecommendationCandidate {
	return []domain.RecommendationCandidate{
		{ProductID: 1, NormalizedScore: 0.9, Reason: "Trending this week", Strategy: domain.StrategyTrending},
		{ProductID: 2, NormalizedScore: 0.7, Reason: "Matches your favorite categories", Strategy: domain.StrategyPersonalized},
	}
}

func TestPersistBatchIsIdempotent(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 24*time.Hour)
	ctx := context.Background()

	inserted, err := recorder.PersistBatch(ctx, 5, testCandidates(), map[string]any{"page": "home"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	// Replaying the same batch while the rows are still active inserts
	// nothing new.
	inserted, err = recorder.PersistBatch(ctx, 5, testCandidates(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
	assert.Len(t, store.recos, 2)

	for _, row := range store.recos {
		assert.Equal(t, uint(5), row.UserID)
		assert.NotEmpty(t, row.BatchID)
		assert.True(t, row.ExpiresAt.After(time.Now()))
	}
}

func TestPersistBatchSkipsAnonymousAndEmpty(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 0)
	ctx := context.Background()

	inserted, err := recorder.PersistBatch(ctx, 0, testCandidates(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	inserted, err = recorder.PersistBatch(ctx, 5, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, store.recos)
}

func TestMarkPurchasedRequiresShown(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 24*time.Hour)
	ctx := context.Background()

	_, err := recorder.PersistBatch(ctx, 5, testCandidates(), nil)
	require.NoError(t, err)

	// Purchase reported before the recommendation was ever shown.
	require.NoError(t, recorder.MarkPurchased(ctx, 5, 1, ""))
	assert.False(t, store.recos[0].IsPurchased)

	require.NoError(t, recorder.MarkShown(ctx, 5, 1, ""))
	require.NoError(t, recorder.MarkPurchased(ctx, 5, 1, ""))

	assert.True(t, store.recos[0].IsShown)
	assert.True(t, store.recos[0].IsPurchased)
	require.NotNil(t, store.recos[0].PurchasedAt)

	// The sibling row is untouched.
	assert.False(t, store.recos[1].IsShown)
	assert.False(t, store.recos[1].IsPurchased)
}

func TestFeedbackWithoutBatchIsSilent(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 24*time.Hour)
	ctx := context.Background()

	assert.NoError(t, recorder.MarkShown(ctx, 5, 1, ""))
	assert.NoError(t, recorder.MarkClicked(ctx, 5, 1, ""))
	assert.NoError(t, recorder.MarkPurchased(ctx, 5, 1, ""))
	assert.Empty(t, store.recos)
}

func TestMarkShownStampsOnlyOnce(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 24*time.Hour)
	ctx := context.Background()

	base := time.Now()
	recorder.now = func() time.Time { return base }

	_, err := recorder.PersistBatch(ctx, 5, testCandidates(), nil)
	require.NoError(t, err)

	require.NoError(t, recorder.MarkShown(ctx, 5, 1, ""))
	require.NotNil(t, store.recos[0].ShownAt)
	firstStamp := *store.recos[0].ShownAt

	recorder.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, recorder.MarkShown(ctx, 5, 1, ""))

	assert.Equal(t, firstStamp, *store.recos[0].ShownAt)
}

func TestMarkFilteredByStrategy(t *testing.T) {
	store := newFakeStore()
	recorder := NewFeedbackRecorder(store, 24*time.Hour)
	ctx := context.Background()

	cands := []domain.RecommendationCandidate{
		{ProductID: 1, NormalizedScore: 0.9, Strategy: domain.StrategyTrending},
		{ProductID: 1, NormalizedScore: 0.8, Strategy: domain.StrategyPersonalized},
	}
	_, err := recorder.PersistBatch(ctx, 5, cands, nil)
	require.NoError(t, err)
	require.Len(t, store.recos, 2)

	require.NoError(t, recorder.MarkClicked(ctx, 5, 1, domain.StrategyPersonalized))

	for _, row := range store.recos {
		if row.Strategy == domain.StrategyPersonalized {
			assert.True(t, row.IsClicked)
		} else {
			assert.False(t, row.IsClicked)
		}
	}
}
