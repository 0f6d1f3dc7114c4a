package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/config"
	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/pkg/response"
)

// EmailHandler queues pool notification emails to contributors.
type EmailHandler struct {
	Svc    *app.ContributionService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewEmailHandler(svc *app.ContributionService, logger *logrus.Logger, cfg *config.Config) *EmailHandler {
	return &EmailHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

type broadcastRequest struct {
	Subject string `json:"subject" binding:"required,min=3,max=150"`
	Message string `json:"message" binding:"required,min=3,max=5000"`
}

// Broadcast POST /api/pools/:id/notify enqueues one email per paying
// contributor of the pool.
func (h *EmailHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.Cfg != nil && !h.Cfg.MailSendEnabled {
		response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": 0, "disabled": true}, "email sending disabled", nil)
		return
	}
	n, err := h.Svc.Broadcast(c.Request.Context(), actorFrom(c), c.Param("id"), req.Subject, req.Message)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": n}, "notification enqueued", nil)
}
