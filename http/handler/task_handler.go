package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/http/middleware"
)

type listTaskRequest struct {
	Scope        domain.TaskScope  `form:"scope"`
	ProjectID    uint64            `form:"projectId"`
	DepartmentID uint64            `form:"departmentId"`
	Status       domain.TaskStatus `form:"status"`
}

type Task struct {
	taskReader domain.TaskReader
}

// List returns the caller's task feed for one scope. An empty scope means
// every task.
func (h *Task) List(c *gin.Context) {
	var params listTaskRequest

	if err := c.ShouldBindQuery(&params); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromContext(c)

	var (
		tasks []domain.Task
		err   error
	)

	switch params.Scope {
	case domain.TaskScopeAll, "":
		tasks, err = h.taskReader.All(ctx)
	case domain.TaskScopeAssigned:
		tasks, err = h.taskReader.Assigned(ctx, userID)
	case domain.TaskScopeCreated:
		tasks, err = h.taskReader.Created(ctx, userID)
	case domain.TaskScopeByProject:
		tasks, err = h.taskReader.ByProject(ctx, params.ProjectID)
	case domain.TaskScopeByDepartment:
		tasks, err = h.taskReader.ByDepartment(ctx, params.DepartmentID)
	case domain.TaskScopeByStatus:
		tasks, err = h.taskReader.ByStatus(ctx, params.Status)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scope"})
		return
	}

	if err != nil {
		abortWithInternalError(c, err)
		return
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func NewTask(taskReader domain.TaskReader) *Task {
	return &Task{
		taskReader: taskReader,
	}
}
