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

// UserModule wires the signed-in user's profile routes and the admin user
// management routes.
// Protected: GET/PATCH /api/profile, POST /api/profile/password, POST /api/profile/avatar
// Admin: GET /api/users, GET/PATCH/DELETE /api/users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	profile := rg.Group("/profile")
	profile.Use(middleware.Auth(rdb, m.JWT))
	profile.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		profile.GET("", m.Handler.GetProfile)
		profile.PATCH("", m.Handler.UpdateProfile)
		profile.POST("/password", middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserIDAndPath(), nil), m.Handler.ChangePassword)
		profile.POST("/avatar", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserIDAndPath(), nil), m.Handler.UploadAvatar)
	}

	users := rg.Group("/users")
	users.Use(middleware.Auth(rdb, m.JWT), middleware.RequireRole(string(entity.RoleAdmin)))
	{
		users.GET("", m.Handler.List)
		users.GET("/:id", m.Handler.Get)
		users.PATCH("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
