package route

import (
	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/http/handler"
)

func presenceRouter(r gin.IRouter, h *handler.Presence) {
	r.GET("/presence/ws", h.WebSocket)
}
