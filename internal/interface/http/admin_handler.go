package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/pkg/response"
)

type AdminHandler struct {
	Svc    *app.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *app.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// Stats GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "dashboard stats", nil)
}
