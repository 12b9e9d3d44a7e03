package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/nguyengiapalth/flowx-sync/domain"
)

// task reads the denormalized per-scope task tables. Each scope has its own
// query so the feed selectors map one to one.
type task struct {
	db *gocql.Session
}

const taskColumns = "id, title, description, assignee_id, creator_id, project_id, department_id, status, due_at, created_at, updated_at"

func (r *task) All(ctx context.Context) ([]domain.Task, error) {
	return r.list(ctx, fmt.Sprintf("SELECT %s FROM tasks", taskColumns))
}

func (r *task) Assigned(ctx context.Context, userID uint64) ([]domain.Task, error) {
	return r.list(ctx,
		fmt.Sprintf("SELECT %s FROM tasks_by_assignee WHERE assignee_id = ?", taskColumns),
		userID,
	)
}

func (r *task) Created(ctx context.Context, userID uint64) ([]domain.Task, error) {
	return r.list(ctx,
		fmt.Sprintf("SELECT %s FROM tasks_by_creator WHERE creator_id = ?", taskColumns),
		userID,
	)
}

func (r *task) ByProject(ctx context.Context, projectID uint64) ([]domain.Task, error) {
	return r.list(ctx,
		fmt.Sprintf("SELECT %s FROM tasks_by_project WHERE project_id = ?", taskColumns),
		projectID,
	)
}

func (r *task) ByDepartment(ctx context.Context, departmentID uint64) ([]domain.Task, error) {
	return r.list(ctx,
		fmt.Sprintf("SELECT %s FROM tasks_by_department WHERE department_id = ?", taskColumns),
		departmentID,
	)
}

func (r *task) ByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(ctx,
		fmt.Sprintf("SELECT %s FROM tasks_by_status WHERE status = ?", taskColumns),
		string(status),
	)
}

func (r *task) list(ctx context.Context, query string, values ...any) ([]domain.Task, error) {
	scanner := r.db.Query(query, values...).WithContext(ctx).Iter().Scanner()

	var (
		tasks []domain.Task
		err   error
	)

	for scanner.Next() {
		var (
			t     domain.Task
			dueAt time.Time
		)

		err = scanner.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.AssigneeID,
			&t.CreatorID,
			&t.ProjectID,
			&t.DepartmentID,
			&t.Status,
			&dueAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Cassandra stores a null timestamp as the zero value.
		if !dueAt.IsZero() {
			t.DueAt = &dueAt
		}

		tasks = append(tasks, t)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to close scanner: %w", err)
	}

	return tasks, nil
}

func NewTask(session *gocql.Session) *task {
	return &task{
		db: session,
	}
}
