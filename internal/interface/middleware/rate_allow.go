package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 callers,
// such as health checks from inside the cluster.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowRole bypasses the limiter for authenticated callers with one of roles.
func AllowRole(roles ...string) AllowFunc {
	return func(c *gin.Context) bool {
		role := c.GetString(CtxUserRole)
		for _, r := range roles {
			if role == r {
				return true
			}
		}
		return false
	}
}
