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

// PoolModule wires pool browsing and management.
// Public: GET /api/pools, /api/pools/search, /api/pools/:id, /api/pools/:id/quote
// Owner or admin: POST /api/pools, PATCH /api/pools/:id[/status], POST /api/pools/:id/image
// Admin: DELETE /api/pools/:id
type PoolModule struct {
	Handler *handlers.PoolHandler
	JWT     *helpers.JWTManager
}

func NewPoolModule(h *handlers.PoolHandler, jwt *helpers.JWTManager) *PoolModule {
	return &PoolModule{Handler: h, JWT: jwt}
}

func (m *PoolModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	public := rg.Group("/pools")
	public.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		public.GET("", m.Handler.List)
		public.GET("/search", middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil), m.Handler.Search)
		public.GET("/:id", m.Handler.Get)
		public.GET("/:id/quote", m.Handler.Quote)
	}

	manage := rg.Group("/pools")
	manage.Use(middleware.Auth(rdb, m.JWT))
	manage.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowRole(string(entity.RoleAdmin))))
	{
		manage.POST("", m.Handler.Create)
		manage.PATCH("/:id", m.Handler.Update)
		manage.PATCH("/:id/status", m.Handler.ChangeStatus)
		manage.POST("/:id/image", m.Handler.UploadImage)
		manage.DELETE("/:id", middleware.RequireRole(string(entity.RoleAdmin)), m.Handler.Delete)
	}
}
