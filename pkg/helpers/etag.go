package helpers

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GenerateETag builds a weak validator from a resource id and its last
// modification time.
func GenerateETag(id string, updatedAt time.Time) string {
	sum := sha1.Sum([]byte(id + "|" + updatedAt.UTC().Format(time.RFC3339Nano)))
	return fmt.Sprintf(`W/"%x"`, sum[:10])
}

// ETagOf hashes any JSON-serializable value.
func ETagOf(v any) string {
	b, _ := json.Marshal(v)
	sum := sha1.Sum(b)
	return fmt.Sprintf(`W/"%x"`, sum[:10])
}

// NotModified sets the ETag header and reports whether the request's
// If-None-Match already carries it. Callers answer 304 when it does.
func NotModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	for _, candidate := range strings.Split(c.GetHeader("If-None-Match"), ",") {
		if strings.TrimSpace(candidate) == etag {
			return true
		}
	}
	return false
}
