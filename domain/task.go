package domain

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

type Task struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AssigneeID   uint64     `json:"assigneeId"`
	CreatorID    uint64     `json:"creatorId"`
	ProjectID    uint64     `json:"projectId"`
	DepartmentID uint64     `json:"departmentId"`
	Status       TaskStatus `json:"status"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TaskReader lists tasks for each task feed scope.
type TaskReader interface {
	All(ctx context.Context) ([]Task, error)
	Assigned(ctx context.Context, userID uint64) ([]Task, error)
	Created(ctx context.Context, userID uint64) ([]Task, error)
	ByProject(ctx context.Context, projectID uint64) ([]Task, error)
	ByDepartment(ctx context.Context, departmentID uint64) ([]Task, error)
	ByStatus(ctx context.Context, status TaskStatus) ([]Task, error)
}
