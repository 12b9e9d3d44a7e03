// Package refresh parameterizes scheduler sessions for the content and task
// feeds.
package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/scheduler"
)

// ContentRefresh drives one scheduler session over the content feed. The
// selector lives in a mutable cell read at fetch time, so re-parameterizing
// never tears the session down; results are kept per selector so a scope
// switch never exposes another scope's data.
type ContentRefresh struct {
	mu       sync.Mutex
	selector domain.ContentSelector
	results  map[string][]*domain.ContentNode
	err      error
	loading  bool

	reader  domain.ContentReader
	session *scheduler.Session
}

func NewContentRefresh(reader domain.ContentReader, selector domain.ContentSelector, opts scheduler.Options) *ContentRefresh {
	r := &ContentRefresh{
		selector: selector,
		results:  make(map[string][]*domain.ContentNode),
		reader:   reader,
	}

	opts.OnRefresh = r.fetch
	r.session = scheduler.New(opts)

	return r
}

// Contents is the slice previously fetched for the current selector, nil
// when that selector has not completed a fetch yet.
func (r *ContentRefresh) Contents() []*domain.ContentNode {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.results[contentKey(r.selector)]
}

func (r *ContentRefresh) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func (r *ContentRefresh) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loading
}

// SetSelector swaps the active selector without restarting the session.
func (r *ContentRefresh) SetSelector(selector domain.ContentSelector) {
	r.mu.Lock()
	r.selector = selector
	r.mu.Unlock()
}

func (r *ContentRefresh) RefreshNow(ctx context.Context) {
	r.session.Refresh(ctx)
}

func (r *ContentRefresh) ToggleAutoRefresh() {
	r.session.Toggle()
}

func (r *ContentRefresh) AutoRefreshActive() bool {
	return r.session.IsActive()
}

func (r *ContentRefresh) Session() *scheduler.Session {
	return r.session
}

func (r *ContentRefresh) Close() {
	r.session.Close()
}

func (r *ContentRefresh) fetch(ctx context.Context) error {
	r.mu.Lock()
	selector := r.selector

	// A half-initialized selector skips the call instead of issuing an
	// ill-formed query.
	if !selector.Ready() {
		r.mu.Unlock()
		return nil
	}

	r.loading = true
	r.mu.Unlock()

	nodes, err := r.query(ctx, selector)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.loading = false

	if err != nil {
		r.err = err
		return fmt.Errorf("fetch contents (%s): %w", selector.Scope, err)
	}

	r.err = nil
	r.results[contentKey(selector)] = nodes

	return nil
}

func (r *ContentRefresh) query(ctx context.Context, selector domain.ContentSelector) ([]*domain.ContentNode, error) {
	switch selector.Scope {
	case domain.ContentScopeGlobal:
		return r.reader.Global(ctx)
	case domain.ContentScopeAllSources:
		return r.reader.AllSources(ctx)
	case domain.ContentScopeByTarget:
		return r.reader.ByTarget(ctx, selector.TargetType, *selector.TargetID)
	case domain.ContentScopeByUser:
		return r.reader.ByUser(ctx, *selector.UserID)
	default:
		return nil, fmt.Errorf("unknown content scope %q", selector.Scope)
	}
}

func contentKey(s domain.ContentSelector) string {
	switch s.Scope {
	case domain.ContentScopeByTarget:
		return fmt.Sprintf("%s:%s:%s", s.Scope, s.TargetType, formatID(s.TargetID))
	case domain.ContentScopeByUser:
		return fmt.Sprintf("%s:%s", s.Scope, formatID(s.UserID))
	default:
		return string(s.Scope)
	}
}

func formatID(id *uint64) string {
	if id == nil {
		return "-"
	}

	return fmt.Sprintf("%d", *id)
}
