package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyengiapalth/flowx-sync/domain"
)

type fakeReactionAPI struct {
	mu           sync.Mutex
	summaries    map[uint64]*domain.ReactionAggregate
	summaryCalls int
	addCalls     int
	removeCalls  int
	addErr       error
	removeErr    error
}

func newFakeReactionAPI() *fakeReactionAPI {
	return &fakeReactionAPI{
		summaries: make(map[uint64]*domain.ReactionAggregate),
	}
}

func (f *fakeReactionAPI) Add(ctx context.Context, contentID uint64, t domain.ReactionType) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.addCalls++

	return f.addErr
}

func (f *fakeReactionAPI) Remove(ctx context.Context, contentID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeCalls++

	return f.removeErr
}

func (f *fakeReactionAPI) Summary(ctx context.Context, contentID uint64) (*domain.ReactionAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.summaryCalls++

	agg, ok := f.summaries[contentID]
	if !ok {
		return &domain.ReactionAggregate{ContentID: contentID}, nil
	}

	out := *agg
	out.ReactionCounts = make(map[domain.ReactionType]int, len(agg.ReactionCounts))
	for k, v := range agg.ReactionCounts {
		out.ReactionCounts[k] = v
	}

	return &out, nil
}

func (f *fakeReactionAPI) setSummary(contentID uint64, agg *domain.ReactionAggregate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.summaries[contentID] = agg
}

func TestSummaryFetchesLazilyOnce(t *testing.T) {
	api := newFakeReactionAPI()
	api.setSummary(42, &domain.ReactionAggregate{
		ReactionCounts: map[domain.ReactionType]int{domain.ReactionLike: 2},
	})

	store := NewReactionStore(api)

	agg, err := store.Summary(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.TotalReactions)
	assert.Equal(t, uint64(42), agg.ContentID)

	_, err = store.Summary(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 1, api.summaryCalls)
}

func TestAddReactionOptimisticallyUpdatesAggregate(t *testing.T) {
	api := newFakeReactionAPI()
	store := NewReactionStore(api)

	require.NoError(t, store.AddOrUpdateReaction(context.Background(), 42, domain.ReactionLove))

	agg, ok := store.Aggregate(42)
	require.True(t, ok)
	assert.Equal(t, domain.ReactionLove, agg.UserReaction)
	assert.Equal(t, 1, agg.ReactionCounts[domain.ReactionLove])
	assert.Equal(t, 1, agg.TotalReactions)
	assert.Equal(t, 1, api.addCalls)
}

func TestReactionReplaceMovesCountBetweenTypes(t *testing.T) {
	api := newFakeReactionAPIWith(42, domain.ReactionLike, map[domain.ReactionType]int{
		domain.ReactionLike: 3,
		domain.ReactionWow:  1,
	})

	store := NewReactionStore(api)

	require.NoError(t, store.AddOrUpdateReaction(context.Background(), 42, domain.ReactionWow))

	agg, _ := store.Aggregate(42)
	assert.Equal(t, domain.ReactionWow, agg.UserReaction)
	assert.Equal(t, 2, agg.ReactionCounts[domain.ReactionLike])
	assert.Equal(t, 2, agg.ReactionCounts[domain.ReactionWow])
	assert.Equal(t, 4, agg.TotalReactions)
}

func TestSameReactionTogglesOff(t *testing.T) {
	api := newFakeReactionAPIWith(42, domain.ReactionLike, map[domain.ReactionType]int{
		domain.ReactionLike: 4,
	})

	store := NewReactionStore(api)

	// Reacting LIKE while already LIKE is an implicit remove.
	require.NoError(t, store.AddOrUpdateReaction(context.Background(), 42, domain.ReactionLike))

	agg, _ := store.Aggregate(42)
	assert.Empty(t, agg.UserReaction)
	assert.Equal(t, 3, agg.ReactionCounts[domain.ReactionLike])
	assert.Equal(t, 3, agg.TotalReactions)
	assert.Equal(t, 1, api.removeCalls)
	assert.Equal(t, 0, api.addCalls)
}

func TestRemoveReactionClearsUserReaction(t *testing.T) {
	api := newFakeReactionAPIWith(42, domain.ReactionSad, map[domain.ReactionType]int{
		domain.ReactionSad: 1,
	})

	store := NewReactionStore(api)

	require.NoError(t, store.RemoveReaction(context.Background(), 42))

	agg, _ := store.Aggregate(42)
	assert.Empty(t, agg.UserReaction)
	assert.Equal(t, 0, agg.ReactionCounts[domain.ReactionSad])
	assert.Equal(t, 0, agg.TotalReactions)
}

func TestRemoveWithoutReactionIsNoop(t *testing.T) {
	api := newFakeReactionAPI()
	store := NewReactionStore(api)

	require.NoError(t, store.RemoveReaction(context.Background(), 42))
	assert.Equal(t, 0, api.removeCalls)
}

func TestRejectedMutationRefetchesAuthoritativeState(t *testing.T) {
	boom := errors.New("rejected")

	api := newFakeReactionAPIWith(42, "", map[domain.ReactionType]int{
		domain.ReactionHaha: 7,
	})
	api.addErr = boom

	store := NewReactionStore(api)

	err := store.AddOrUpdateReaction(context.Background(), 42, domain.ReactionLove)
	require.ErrorIs(t, err, boom)

	// The optimistic LOVE was discarded in favor of the server state.
	agg, ok := store.Aggregate(42)
	require.True(t, ok)
	assert.Empty(t, agg.UserReaction)
	assert.Equal(t, 0, agg.ReactionCounts[domain.ReactionLove])
	assert.Equal(t, 7, agg.ReactionCounts[domain.ReactionHaha])
}

func TestUnknownReactionTypeRejected(t *testing.T) {
	store := NewReactionStore(newFakeReactionAPI())

	err := store.AddOrUpdateReaction(context.Background(), 42, "THUMBS")
	require.Error(t, err)
}

func TestTopReactionsFromStore(t *testing.T) {
	api := newFakeReactionAPIWith(42, "", map[domain.ReactionType]int{
		domain.ReactionLike: 1,
		domain.ReactionLove: 5,
		domain.ReactionWow:  3,
		domain.ReactionSad:  2,
	})

	store := NewReactionStore(api)

	// Nothing cached yet, nothing fetched.
	assert.Nil(t, store.TopReactions(42, 3))

	_, err := store.Summary(context.Background(), 42)
	require.NoError(t, err)

	top := store.TopReactions(42, 3)
	require.Len(t, top, 3)
	assert.Equal(t, domain.ReactionLove, top[0].Type)
	assert.Equal(t, domain.ReactionWow, top[1].Type)
	assert.Equal(t, domain.ReactionSad, top[2].Type)
}

func newFakeReactionAPIWith(contentID uint64, user domain.ReactionType, counts map[domain.ReactionType]int) *fakeReactionAPI {
	api := newFakeReactionAPI()
	api.setSummary(contentID, &domain.ReactionAggregate{
		UserReaction:   user,
		ReactionCounts: counts,
	})

	return api
}
