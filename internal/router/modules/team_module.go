package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagemarket/village-market/internal/container"
	"github.com/villagemarket/village-market/internal/domain/entity"
	handlers "github.com/villagemarket/village-market/internal/interface/http"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/helpers"
)

type TeamModule struct {
	Handler *handlers.TeamHandler
	JWT     *helpers.JWTManager
}

func NewTeamModule(h *handlers.TeamHandler, jwt *helpers.JWTManager) *TeamModule {
	return &TeamModule{Handler: h, JWT: jwt}
}

func (m *TeamModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	rg.GET("/team-members", middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIPAndPath(), nil), m.Handler.List)

	admin := rg.Group("/team-members")
	admin.Use(middleware.Auth(rdb, m.JWT), middleware.RequireRole(string(entity.RoleAdmin)))
	{
		admin.POST("", m.Handler.Create)
		admin.PATCH("/:id", m.Handler.Update)
		admin.POST("/:id/avatar", m.Handler.UploadAvatar)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
