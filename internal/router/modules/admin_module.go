package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/villagemarket/village-market/internal/container"
	"github.com/villagemarket/village-market/internal/domain/entity"
	handlers "github.com/villagemarket/village-market/internal/interface/http"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/helpers"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	rg.GET("/admin/stats",
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RequireRole(string(entity.RoleAdmin)),
		m.Handler.Stats,
	)
}
