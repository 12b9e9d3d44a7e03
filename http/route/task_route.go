package route

import (
	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/http/handler"
)

func taskRouter(r gin.IRouter, h *handler.Task) {
	tasks := r.Group("/tasks")

	tasks.GET("", h.List)
}
