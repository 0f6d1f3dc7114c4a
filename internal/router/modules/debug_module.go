package modules

import (
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagemarket/village-market/internal/container"
	"github.com/villagemarket/village-market/internal/interface/middleware"
)

var publishOnce sync.Once

// DebugModule exposes expvar counters including postgres pool and redis
// client stats.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	publishOnce.Do(publishStats)

	// rate-limited per IP; in-cluster scrapers are exempt
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

func publishStats() {
	expvar.Publish("pgxpool", expvar.Func(func() any {
		p := container.GetPGPool()
		if p == nil {
			return nil
		}
		s := p.Stat()
		return map[string]any{
			"total":          s.TotalConns(),
			"idle":           s.IdleConns(),
			"acquired":       s.AcquiredConns(),
			"max":            s.MaxConns(),
			"acquire_count":  s.AcquireCount(),
			"empty_acquires": s.EmptyAcquireCount(),
		}
	}))
	expvar.Publish("redis", expvar.Func(func() any {
		rdb := container.GetRedis()
		if rdb == nil {
			return nil
		}
		s := rdb.PoolStats()
		return map[string]any{
			"hits":        s.Hits,
			"misses":      s.Misses,
			"timeouts":    s.Timeouts,
			"total_conns": s.TotalConns,
			"idle_conns":  s.IdleConns,
		}
	}))
}
