package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/response"
	"github.com/villagemarket/village-market/pkg/validation"
)

const (
	maxUploadBytes = 5 << 20
	maxPageLimit   = 100
)

func actorFrom(c *gin.Context) app.Actor {
	return app.Actor{
		UserID: c.GetString(middleware.CtxUserID),
		Role:   entity.Role(c.GetString(middleware.CtxUserRole)),
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// idParam reads the :id path parameter. Anything but a UUID answers 404
// with notFound.
func idParam(c *gin.Context, notFound error) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusNotFound, notFound.Error(), nil)
		return "", false
	}
	return id, true
}

// bindJSON binds and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return false
	}
	return true
}

// pageQuery is embedded in list query structs.
type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (q pageQuery) page() repo.Page {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return repo.Page{Limit: limit, Offset: q.Offset}
}

func pageMeta(p repo.Page, total int) response.PageMeta {
	return response.PageMeta{Total: total, Limit: p.Limit, Offset: p.Offset}
}

// readUpload opens the multipart file in field. The caller closes the file.
func readUpload(c *gin.Context, field string) (app.Upload, multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	fh, err := c.FormFile(field)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", map[string]string{field: "required"})
		return app.Upload{}, nil, false
	}
	if fh.Size > maxUploadBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", map[string]string{field: "max " + strconv.Itoa(maxUploadBytes>>20) + "MB"})
		return app.Upload{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return app.Upload{}, nil, false
	}
	return app.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f}, f, true
}
