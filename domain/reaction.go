package domain

import (
	"context"
	"sort"
)

type ReactionType string

const (
	ReactionLike  ReactionType = "LIKE"
	ReactionLove  ReactionType = "LOVE"
	ReactionHaha  ReactionType = "HAHA"
	ReactionWow   ReactionType = "WOW"
	ReactionSad   ReactionType = "SAD"
	ReactionAngry ReactionType = "ANGRY"
)

// ReactionTypes is the fixed iteration order used to keep count ties stable.
var ReactionTypes = []ReactionType{
	ReactionLike,
	ReactionLove,
	ReactionHaha,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

func (t ReactionType) Valid() bool {
	for _, known := range ReactionTypes {
		if t == known {
			return true
		}
	}

	return false
}

// ReactionAggregate is the per-content reaction summary. UserReaction is the
// calling user's own reaction, empty when they have none.
type ReactionAggregate struct {
	ContentID      uint64               `json:"contentId"`
	TotalReactions int                  `json:"totalReactions"`
	ReactionCounts map[ReactionType]int `json:"reactionCounts"`
	UserReaction   ReactionType         `json:"userReaction,omitempty"`
}

type ReactionCount struct {
	Type  ReactionType `json:"type"`
	Count int          `json:"count"`
}

// TopReactions returns up to n reaction types ordered by descending count.
// Non-positive and unknown entries are dropped; equal counts keep the
// ReactionTypes order.
func (a ReactionAggregate) TopReactions(n int) []ReactionCount {
	var top []ReactionCount

	for _, t := range ReactionTypes {
		if count := a.ReactionCounts[t]; count > 0 {
			top = append(top, ReactionCount{Type: t, Count: count})
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})

	if len(top) > n {
		top = top[:n]
	}

	return top
}

// ReactionAPI is the remote reaction endpoint. Add covers both create and
// replace; Summary returns the authoritative aggregate.
type ReactionAPI interface {
	Add(ctx context.Context, contentID uint64, t ReactionType) error
	Remove(ctx context.Context, contentID uint64) error
	Summary(ctx context.Context, contentID uint64) (*ReactionAggregate, error)
}
