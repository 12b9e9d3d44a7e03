package route

import (
	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/http/handler"
)

func contentRouter(r gin.IRouter, h *handler.Content) {
	contents := r.Group("/contents")

	contents.GET("", h.ListTree)
	contents.POST("", h.CreateReply)
}
