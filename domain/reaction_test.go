package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopReactionsDropsNonPositiveCounts(t *testing.T) {
	agg := ReactionAggregate{
		ReactionCounts: map[ReactionType]int{
			ReactionLike: 0,
			ReactionLove: 5,
			ReactionHaha: -1,
			ReactionWow:  3,
		},
	}

	top := agg.TopReactions(3)
	require.Len(t, top, 2)
	assert.Equal(t, ReactionCount{Type: ReactionLove, Count: 5}, top[0])
	assert.Equal(t, ReactionCount{Type: ReactionWow, Count: 3}, top[1])
}

func TestTopReactionsBreaksTiesInFixedOrder(t *testing.T) {
	agg := ReactionAggregate{
		ReactionCounts: map[ReactionType]int{
			ReactionAngry: 2,
			ReactionLike:  2,
			ReactionSad:   2,
		},
	}

	top := agg.TopReactions(2)
	require.Len(t, top, 2)
	assert.Equal(t, ReactionLike, top[0].Type)
	assert.Equal(t, ReactionSad, top[1].Type)
}

func TestTopReactionsEmptyAggregate(t *testing.T) {
	assert.Empty(t, ReactionAggregate{}.TopReactions(3))
}

func TestReactionTypeValid(t *testing.T) {
	for _, known := range ReactionTypes {
		assert.True(t, known.Valid())
	}

	assert.False(t, ReactionType("THUMBS").Valid())
	assert.False(t, ReactionType("").Valid())
}
