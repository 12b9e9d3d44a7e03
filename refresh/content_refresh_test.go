package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/scheduler"
)

type fakeContentReader struct {
	mu      sync.Mutex
	calls   atomic.Int32
	global  []*domain.ContentNode
	byUser  map[uint64][]*domain.ContentNode
	failErr error
}

func (f *fakeContentReader) Global(ctx context.Context) ([]*domain.ContentNode, error) {
	f.calls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return nil, f.failErr
	}

	return f.global, nil
}

func (f *fakeContentReader) AllSources(ctx context.Context) ([]*domain.ContentNode, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeContentReader) ByTarget(ctx context.Context, targetType string, targetID uint64) ([]*domain.ContentNode, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeContentReader) ByUser(ctx context.Context, userID uint64) ([]*domain.ContentNode, error) {
	f.calls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.byUser[userID], nil
}

func node(id uint64) *domain.ContentNode {
	return &domain.ContentNode{ID: id, ParentID: domain.RootParentID}
}

func TestGuardedSelectorNeverFetches(t *testing.T) {
	reader := &fakeContentReader{}

	r := NewContentRefresh(reader, domain.ContentSelector{
		Scope: domain.ContentScopeByUser, // UserID missing
	}, scheduler.Options{
		Enabled:  true,
		Interval: 5 * time.Millisecond,
	})
	defer r.Close()

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, int32(0), reader.calls.Load())
	assert.Nil(t, r.Contents())

	// Supplying the id unblocks the next tick without a session restart.
	userID := uint64(7)
	r.SetSelector(domain.ContentSelector{
		Scope:  domain.ContentScopeByUser,
		UserID: &userID,
	})

	require.Eventually(t, func() bool {
		return reader.calls.Load() > 0
	}, time.Second, time.Millisecond)
}

func TestContentsExposesOnlyActiveSelectorData(t *testing.T) {
	userID := uint64(9)

	reader := &fakeContentReader{
		global: []*domain.ContentNode{node(1), node(2)},
		byUser: map[uint64][]*domain.ContentNode{
			userID: {node(3)},
		},
	}

	r := NewContentRefresh(reader, domain.ContentSelector{
		Scope: domain.ContentScopeGlobal,
	}, scheduler.Options{})
	defer r.Close()

	r.RefreshNow(context.Background())
	require.Len(t, r.Contents(), 2)

	r.SetSelector(domain.ContentSelector{
		Scope:  domain.ContentScopeByUser,
		UserID: &userID,
	})

	// No fetch has completed for the new selector yet, so no stale
	// global data leaks through.
	assert.Nil(t, r.Contents())

	r.RefreshNow(context.Background())
	require.Len(t, r.Contents(), 1)
	assert.Equal(t, uint64(3), r.Contents()[0].ID)

	// Switching back exposes the previously fetched global slice.
	r.SetSelector(domain.ContentSelector{Scope: domain.ContentScopeGlobal})
	assert.Len(t, r.Contents(), 2)
}

func TestFetchFailureSurfacesAndSelfHeals(t *testing.T) {
	boom := errors.New("boom")

	reader := &fakeContentReader{
		global:  []*domain.ContentNode{node(1)},
		failErr: boom,
	}

	var onError atomic.Int32

	r := NewContentRefresh(reader, domain.ContentSelector{
		Scope: domain.ContentScopeGlobal,
	}, scheduler.Options{
		OnError: func(err error) {
			if errors.Is(err, boom) {
				onError.Add(1)
			}
		},
	})
	defer r.Close()

	r.RefreshNow(context.Background())

	require.ErrorIs(t, r.Err(), boom)
	assert.Equal(t, int32(1), onError.Load())
	assert.Nil(t, r.Contents())

	reader.mu.Lock()
	reader.failErr = nil
	reader.mu.Unlock()

	r.RefreshNow(context.Background())

	require.NoError(t, r.Err())
	assert.Len(t, r.Contents(), 1)
}

func TestToggleAutoRefresh(t *testing.T) {
	reader := &fakeContentReader{}

	r := NewContentRefresh(reader, domain.ContentSelector{
		Scope: domain.ContentScopeGlobal,
	}, scheduler.Options{
		Enabled:  true,
		Interval: time.Hour,
	})
	defer r.Close()

	require.True(t, r.AutoRefreshActive())

	r.ToggleAutoRefresh()
	assert.False(t, r.AutoRefreshActive())

	r.ToggleAutoRefresh()
	assert.True(t, r.AutoRefreshActive())
}
