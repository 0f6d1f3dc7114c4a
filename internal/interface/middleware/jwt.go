package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/villagemarket/village-market/pkg/helpers"
)

// Gin context keys set by Auth and OptionalAuth.
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxUserName  = "userName"
	CtxUserEmail = "userEmail"
)

type identity struct {
	userID string
	role   string
	name   string
	email  string
}

func (id identity) set(c *gin.Context) {
	c.Set(CtxUserID, id.userID)
	c.Set(CtxUserRole, id.role)
	c.Set(CtxUserName, id.name)
	c.Set(CtxUserEmail, id.email)
}

// resolveIdentity checks token against the session hash. A non-zero status
// is the HTTP status to reject the request with. Without Redis the token
// claims are trusted as-is.
func resolveIdentity(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager, token string) (identity, int, string) {
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return identity{}, http.StatusUnauthorized, "invalid access token"
	}
	if rdb == nil {
		return identity{userID: claims.UserID, role: claims.Role}, 0, ""
	}

	data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.UserID)).Result()
	if err != nil || len(data) == 0 {
		return identity{}, http.StatusUnauthorized, "session not found"
	}
	if data["sid"] != claims.SessionID {
		return identity{}, http.StatusUnauthorized, "session expired"
	}
	if s := data["status"]; s != "" && s != "ACTIVE" {
		return identity{}, http.StatusForbidden, "account is suspended or inactive"
	}

	role := data["role"]
	if role == "" {
		role = claims.Role
	}
	return identity{userID: data["user_id"], role: role, name: data["name"], email: data["email"]}, 0, ""
}
