package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/scheduler"
)

// TaskRefresh is the task-feed twin of ContentRefresh.
type TaskRefresh struct {
	mu       sync.Mutex
	selector domain.TaskSelector
	results  map[string][]domain.Task
	err      error
	loading  bool

	reader  domain.TaskReader
	session *scheduler.Session
}

func NewTaskRefresh(reader domain.TaskReader, selector domain.TaskSelector, opts scheduler.Options) *TaskRefresh {
	r := &TaskRefresh{
		selector: selector,
		results:  make(map[string][]domain.Task),
		reader:   reader,
	}

	opts.OnRefresh = r.fetch
	r.session = scheduler.New(opts)

	return r
}

func (r *TaskRefresh) Tasks() []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.results[taskKey(r.selector)]
}

func (r *TaskRefresh) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func (r *TaskRefresh) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loading
}

func (r *TaskRefresh) SetSelector(selector domain.TaskSelector) {
	r.mu.Lock()
	r.selector = selector
	r.mu.Unlock()
}

func (r *TaskRefresh) RefreshNow(ctx context.Context) {
	r.session.Refresh(ctx)
}

func (r *TaskRefresh) ToggleAutoRefresh() {
	r.session.Toggle()
}

func (r *TaskRefresh) AutoRefreshActive() bool {
	return r.session.IsActive()
}

func (r *TaskRefresh) Session() *scheduler.Session {
	return r.session
}

func (r *TaskRefresh) Close() {
	r.session.Close()
}

func (r *TaskRefresh) fetch(ctx context.Context) error {
	r.mu.Lock()
	selector := r.selector

	if !selector.Ready() {
		r.mu.Unlock()
		return nil
	}

	r.loading = true
	r.mu.Unlock()

	tasks, err := r.query(ctx, selector)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.loading = false

	if err != nil {
		r.err = err
		return fmt.Errorf("fetch tasks (%s): %w", selector.Scope, err)
	}

	r.err = nil
	r.results[taskKey(selector)] = tasks

	return nil
}

func (r *TaskRefresh) query(ctx context.Context, selector domain.TaskSelector) ([]domain.Task, error) {
	switch selector.Scope {
	case domain.TaskScopeAll:
		return r.reader.All(ctx)
	case domain.TaskScopeAssigned:
		return r.reader.Assigned(ctx, *selector.UserID)
	case domain.TaskScopeCreated:
		return r.reader.Created(ctx, *selector.UserID)
	case domain.TaskScopeByProject:
		return r.reader.ByProject(ctx, *selector.ProjectID)
	case domain.TaskScopeByDepartment:
		return r.reader.ByDepartment(ctx, *selector.DepartmentID)
	case domain.TaskScopeByStatus:
		return r.reader.ByStatus(ctx, *selector.Status)
	default:
		return nil, fmt.Errorf("unknown task scope %q", selector.Scope)
	}
}

func taskKey(s domain.TaskSelector) string {
	switch s.Scope {
	case domain.TaskScopeAssigned, domain.TaskScopeCreated:
		return fmt.Sprintf("%s:%s", s.Scope, formatID(s.UserID))
	case domain.TaskScopeByProject:
		return fmt.Sprintf("%s:%s", s.Scope, formatID(s.ProjectID))
	case domain.TaskScopeByDepartment:
		return fmt.Sprintf("%s:%s", s.Scope, formatID(s.DepartmentID))
	case domain.TaskScopeByStatus:
		if s.Status == nil {
			return string(s.Scope) + ":-"
		}

		return fmt.Sprintf("%s:%s", s.Scope, *s.Status)
	default:
		return string(s.Scope)
	}
}
