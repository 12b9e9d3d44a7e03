package route

import (
	"github.com/gin-gonic/gin"
	"github.com/nguyengiapalth/flowx-sync/bootstrap"
	"github.com/nguyengiapalth/flowx-sync/http/handler"
	"github.com/nguyengiapalth/flowx-sync/http/middleware"
)

const v1Prefix = "/v1"

func Setup(handler *handler.Handler, envName string) *gin.Engine {
	if envName == bootstrap.ProductionEnvironmentName {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	eng := gin.Default()

	eng.SetTrustedProxies(nil)

	v1 := eng.Group(v1Prefix, middleware.NewUser)
	{
		presenceRouter(v1, handler.Presence)
		contentRouter(v1, handler.Content)
		taskRouter(v1, handler.Task)
	}

	return eng
}
