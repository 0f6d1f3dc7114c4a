package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagemarket/village-market/internal/container"
	handlers "github.com/villagemarket/village-market/internal/interface/http"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/helpers"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	JWT     *helpers.JWTManager
}

func NewEmailModule(h *handlers.EmailHandler, jwt *helpers.JWTManager) *EmailModule {
	return &EmailModule{Handler: h, JWT: jwt}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.POST("/pools/:id/notify",
		middleware.Auth(rdb, m.JWT),
		middleware.RateLimit(rdb, 5, time.Hour, middleware.KeyByUserIDAndPath(), nil),
		m.Handler.Broadcast,
	)
}
