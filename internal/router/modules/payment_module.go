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

// PaymentModule wires checkout, settlement and contribution tracking.
// The callback and webhook stay public: the gateway and the returning
// browser carry no session.
type PaymentModule struct {
	Handler *handlers.ContributionHandler
	JWT     *helpers.JWTManager
}

func NewPaymentModule(h *handlers.ContributionHandler, jwt *helpers.JWTManager) *PaymentModule {
	return &PaymentModule{Handler: h, JWT: jwt}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	auth := middleware.Auth(rdb, m.JWT)
	admin := middleware.RequireRole(string(entity.RoleAdmin))

	rg.GET("/payments/callback", middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil), m.Handler.Callback)
	rg.POST("/payments/webhook", m.Handler.Webhook)

	payments := rg.Group("/payments")
	payments.Use(auth)
	{
		payments.POST("/initialize", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserIDAndPath(), nil), m.Handler.Initialize)
		payments.GET("/verify/:reference", middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserIDAndPath(), nil), m.Handler.Verify)
	}

	contributions := rg.Group("/contributions")
	contributions.Use(auth, middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		contributions.GET("/me", m.Handler.Mine)
		contributions.GET("/:id", m.Handler.Get)
		contributions.PATCH("/:id/delivery", m.Handler.UpdateDelivery)
	}

	rg.GET("/pools/:id/contributions", auth, m.Handler.ForPool)
	rg.GET("/admin/contributions", auth, admin, m.Handler.All)
}
