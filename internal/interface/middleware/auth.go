package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/response"
)

// Auth validates the access token and ensures it belongs to the live session
// in Redis. It sets userID, userRole, userName and userEmail in the Gin
// context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.AccessToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		id, status, msg := resolveIdentity(c, rdb, jwt, token)
		if status != 0 {
			response.Abort(c, status, msg, nil)
			return
		}
		id.set(c)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := helpers.AccessToken(c); token != "" {
			if id, status, _ := resolveIdentity(c, rdb, jwt, token); status == 0 {
				id.set(c)
			}
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated role is one of roles.
// It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if !allowed[c.GetString(CtxUserRole)] {
			response.Abort(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}
