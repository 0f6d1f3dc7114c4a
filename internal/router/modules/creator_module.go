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

type CreatorModule struct {
	Handler *handlers.CreatorHandler
	JWT     *helpers.JWTManager
}

func NewCreatorModule(h *handlers.CreatorHandler, jwt *helpers.JWTManager) *CreatorModule {
	return &CreatorModule{Handler: h, JWT: jwt}
}

func (m *CreatorModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	creators := rg.Group("/creators")
	creators.Use(middleware.Auth(rdb, m.JWT))
	creators.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		creators.POST("", m.Handler.Register)
		creators.GET("/me", m.Handler.Mine)
		creators.PATCH("/me", m.Handler.UpdateMine)
		creators.GET("/me/pools", m.Handler.MyPools)
	}

	admin := rg.Group("/admin/creators")
	admin.Use(middleware.Auth(rdb, m.JWT), middleware.RequireRole(string(entity.RoleAdmin)))
	{
		admin.GET("", m.Handler.List)
		admin.GET("/:id", m.Handler.Get)
		admin.PATCH("/:id/status", m.Handler.SetStatus)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
