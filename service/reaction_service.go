package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/nguyengiapalth/flowx-sync/domain"
)

// ReactionStore holds per-content reaction aggregates, fetched lazily the
// first time a node asks for its summary. Mutations apply optimistically and
// fall back to invalidate-and-refetch when the server rejects them: no
// rollback math, the server stays the source of truth.
type ReactionStore struct {
	mu         sync.Mutex
	api        domain.ReactionAPI
	aggregates map[uint64]*domain.ReactionAggregate
}

func NewReactionStore(api domain.ReactionAPI) *ReactionStore {
	return &ReactionStore{
		api:        api,
		aggregates: make(map[uint64]*domain.ReactionAggregate),
	}
}

// Summary returns the aggregate for contentID, fetching it on first use.
func (s *ReactionStore) Summary(ctx context.Context, contentID uint64) (domain.ReactionAggregate, error) {
	s.mu.Lock()
	if agg, ok := s.aggregates[contentID]; ok {
		out := cloneAggregate(agg)
		s.mu.Unlock()

		return out, nil
	}
	s.mu.Unlock()

	agg, err := s.api.Summary(ctx, contentID)
	if err != nil {
		return domain.ReactionAggregate{}, fmt.Errorf("fetch reaction summary: %w", err)
	}

	s.mu.Lock()
	s.aggregates[contentID] = normalizeAggregate(contentID, agg)
	out := cloneAggregate(s.aggregates[contentID])
	s.mu.Unlock()

	return out, nil
}

// AddOrUpdateReaction sets or replaces the caller's reaction. Reacting with
// the type already held is an implicit remove (single click toggles). The
// local aggregate updates before the round trip; a rejected call refetches
// the authoritative state and the error goes back to the caller.
func (s *ReactionStore) AddOrUpdateReaction(ctx context.Context, contentID uint64, t domain.ReactionType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown reaction type %q", t)
	}

	if _, err := s.Summary(ctx, contentID); err != nil {
		return err
	}

	s.mu.Lock()
	agg := s.aggregates[contentID]
	toggleOff := agg.UserReaction == t

	if toggleOff {
		applyRemove(agg)
	} else {
		applySet(agg, t)
	}
	s.mu.Unlock()

	var err error
	if toggleOff {
		err = s.api.Remove(ctx, contentID)
	} else {
		err = s.api.Add(ctx, contentID, t)
	}

	if err != nil {
		s.refetch(ctx, contentID)
		return fmt.Errorf("update reaction: %w", err)
	}

	return nil
}

// RemoveReaction clears the caller's reaction on contentID.
func (s *ReactionStore) RemoveReaction(ctx context.Context, contentID uint64) error {
	if _, err := s.Summary(ctx, contentID); err != nil {
		return err
	}

	s.mu.Lock()
	agg := s.aggregates[contentID]

	if agg.UserReaction == "" {
		s.mu.Unlock()
		return nil
	}

	applyRemove(agg)
	s.mu.Unlock()

	if err := s.api.Remove(ctx, contentID); err != nil {
		s.refetch(ctx, contentID)
		return fmt.Errorf("remove reaction: %w", err)
	}

	return nil
}

// TopReactions lists up to n reaction types for compact display. Unknown
// content yields an empty list; no fetch is triggered here.
func (s *ReactionStore) TopReactions(contentID uint64, n int) []domain.ReactionCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.aggregates[contentID]
	if !ok {
		return nil
	}

	return agg.TopReactions(n)
}

// Aggregate reads the cached aggregate without fetching.
func (s *ReactionStore) Aggregate(contentID uint64) (domain.ReactionAggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.aggregates[contentID]
	if !ok {
		return domain.ReactionAggregate{}, false
	}

	return cloneAggregate(agg), true
}

// Invalidate drops the cached aggregate so the next Summary refetches.
func (s *ReactionStore) Invalidate(contentID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.aggregates, contentID)
}

// refetch replaces the optimistic aggregate with the server's state after a
// rejected mutation. When even the refetch fails, the cache entry is
// dropped so the next display retries.
func (s *ReactionStore) refetch(ctx context.Context, contentID uint64) {
	agg, err := s.api.Summary(ctx, contentID)
	if err != nil {
		log.Printf("err: refetch reaction summary: %s", err)
		s.Invalidate(contentID)

		return
	}

	s.mu.Lock()
	s.aggregates[contentID] = normalizeAggregate(contentID, agg)
	s.mu.Unlock()
}

func applySet(agg *domain.ReactionAggregate, t domain.ReactionType) {
	if agg.UserReaction != "" {
		decrement(agg, agg.UserReaction)
	}

	agg.ReactionCounts[t]++
	agg.UserReaction = t

	recount(agg)
}

func applyRemove(agg *domain.ReactionAggregate) {
	if agg.UserReaction == "" {
		return
	}

	decrement(agg, agg.UserReaction)
	agg.UserReaction = ""

	recount(agg)
}

func decrement(agg *domain.ReactionAggregate, t domain.ReactionType) {
	if agg.ReactionCounts[t] <= 1 {
		delete(agg.ReactionCounts, t)
		return
	}

	agg.ReactionCounts[t]--
}

// recount keeps TotalReactions equal to the sum of the counts.
func recount(agg *domain.ReactionAggregate) {
	total := 0
	for _, count := range agg.ReactionCounts {
		if count > 0 {
			total += count
		}
	}

	agg.TotalReactions = total
}

func normalizeAggregate(contentID uint64, agg *domain.ReactionAggregate) *domain.ReactionAggregate {
	out := cloneAggregate(agg)
	out.ContentID = contentID

	if out.ReactionCounts == nil {
		out.ReactionCounts = make(map[domain.ReactionType]int)
	}

	recount(&out)

	return &out
}

func cloneAggregate(agg *domain.ReactionAggregate) domain.ReactionAggregate {
	out := *agg

	out.ReactionCounts = make(map[domain.ReactionType]int, len(agg.ReactionCounts))
	for t, count := range agg.ReactionCounts {
		out.ReactionCounts[t] = count
	}

	return out
}
