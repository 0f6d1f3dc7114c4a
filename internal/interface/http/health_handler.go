package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagemarket/village-market/pkg/response"
)

// Pinger is satisfied by *pgxpool.Pool. Wrap other clients with PingFunc.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	Checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{Checks: checks}
}

// Live GET /api/health
func (h *HealthHandler) Live(c *gin.Context) {
	response.Success[any](c, http.StatusOK, gin.H{"status": "ok"}, "alive", nil)
}

// Ready GET /api/health/ready answers 503 when any dependency is down.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := make(map[string]string, len(h.Checks))
	for name, p := range h.Checks {
		if p == nil {
			out[name] = "disabled"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			out[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		out[name] = "up"
	}
	if status != http.StatusOK {
		response.Error[any](c, status, "not ready", out)
		return
	}
	response.Success[any](c, status, out, "ready", nil)
}
