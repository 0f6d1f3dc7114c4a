package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/response"
)

type PoolHandler struct {
	Svc    *app.PoolService
	Logger *logrus.Logger
}

func NewPoolHandler(svc *app.PoolService, logger *logrus.Logger) *PoolHandler {
	return &PoolHandler{Svc: svc, Logger: logger}
}

type listPoolsQuery struct {
	Status   string `form:"status" binding:"omitempty,pool_status"`
	Category string `form:"category" binding:"omitempty,category"`
	State    string `form:"state" binding:"omitempty,max=60"`
	Creator  string `form:"creator_id" binding:"omitempty,uuid"`
	Q        string `form:"q" binding:"omitempty,max=100"`
	pageQuery
}

func (q listPoolsQuery) filter(page repo.Page) repo.PoolFilter {
	return repo.PoolFilter{
		Status:    q.Status,
		Category:  q.Category,
		State:     q.State,
		CreatorID: q.Creator,
		Query:     q.Q,
		Page:      page,
	}
}

// List GET /api/pools. Answers 304 when If-None-Match matches the page.
func (h *PoolHandler) List(c *gin.Context) {
	var q listPoolsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	pools, total, err := h.Svc.List(c.Request.Context(), q.filter(page))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	data := mapSlice(pools, toPool)
	meta := pageMeta(page, total)
	if helpers.NotModified(c, helpers.ETagOf(gin.H{"data": data, "meta": meta})) {
		c.Status(http.StatusNotModified)
		return
	}
	response.Success(c, http.StatusOK, data, "pools", meta)
}

// Get GET /api/pools/:id (uuid or slug)
func (h *PoolHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if helpers.NotModified(c, helpers.GenerateETag(p.ID, p.UpdatedAt)) {
		c.Status(http.StatusNotModified)
		return
	}
	response.Success(c, http.StatusOK, toPool(p), "pool", nil)
}

// Search GET /api/pools/search?q=&status=&limit=
func (h *PoolHandler) Search(c *gin.Context) {
	var q struct {
		Q      string `form:"q" binding:"required,min=2,max=100"`
		Status string `form:"status" binding:"omitempty,pool_status"`
		Limit  int    `form:"limit" binding:"omitempty,min=1,max=50"`
	}
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	pools, err := h.Svc.Search(c.Request.Context(), q.Q, q.Status, q.Limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(pools, toPool), "search results", nil)
}

// Quote GET /api/pools/:id/quote?slots=N
func (h *PoolHandler) Quote(c *gin.Context) {
	slots, err := strconv.Atoi(c.DefaultQuery("slots", "1"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"slots": "must be a number"})
		return
	}
	p, q, err := h.Svc.Quote(c.Request.Context(), c.Param("id"), slots)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"pool_id":         p.ID,
		"per_slot":        q.PerSlot,
		"slots":           q.Slots,
		"total":           q.Total,
		"remaining_slots": q.Remaining,
	}, "quote", nil)
}

type createPoolRequest struct {
	Title        string     `json:"title" binding:"required,min=3,max=160"`
	Description  string     `json:"description" binding:"required,max=5000"`
	Category     string     `json:"category" binding:"required,category"`
	Goal         int64      `json:"goal" binding:"required,gt=0,max=1000000000000"`
	Contributors int        `json:"contributors" binding:"required,gt=0,max=100000"`
	State        string     `json:"state" binding:"required,max=60"`
	City         string     `json:"city" binding:"required,max=60"`
	Address      string     `json:"address" binding:"omitempty,max=255"`
	Deadline     *time.Time `json:"deadline"`
	ImageURL     string     `json:"image_url" binding:"omitempty,url"`
	CreatorID    string     `json:"creator_id" binding:"omitempty,uuid"`
}

// Create POST /api/pools (verified creator or admin)
func (h *PoolHandler) Create(c *gin.Context) {
	var req createPoolRequest
	if !bindJSON(c, &req) {
		return
	}
	in := app.PoolInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     entity.Category(req.Category),
		Goal:         req.Goal,
		Contributors: req.Contributors,
		State:        req.State,
		City:         req.City,
		Address:      req.Address,
		ImageURL:     req.ImageURL,
		CreatorID:    req.CreatorID,
	}
	if req.Deadline != nil {
		in.Deadline = *req.Deadline
	}
	p, err := h.Svc.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPool(p), "pool created", nil)
}

type updatePoolRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=3,max=160"`
	Description  *string    `json:"description" binding:"omitempty,max=5000"`
	Category     *string    `json:"category" binding:"omitempty,category"`
	Goal         *int64     `json:"goal" binding:"omitempty,gt=0,max=1000000000000"`
	Contributors *int       `json:"contributors" binding:"omitempty,gt=0,max=100000"`
	State        *string    `json:"state" binding:"omitempty,max=60"`
	City         *string    `json:"city" binding:"omitempty,max=60"`
	Address      *string    `json:"address" binding:"omitempty,max=255"`
	Deadline     *time.Time `json:"deadline"`
	ImageURL     *string    `json:"image_url" binding:"omitempty,url"`
}

// Update PATCH /api/pools/:id (owner or admin)
func (h *PoolHandler) Update(c *gin.Context) {
	var req updatePoolRequest
	if !bindJSON(c, &req) {
		return
	}
	in := app.PoolUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Goal:         req.Goal,
		Contributors: req.Contributors,
		State:        req.State,
		City:         req.City,
		Address:      req.Address,
		Deadline:     req.Deadline,
		ImageURL:     req.ImageURL,
	}
	if req.Category != nil {
		cat := entity.Category(*req.Category)
		in.Category = &cat
	}
	p, err := h.Svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPool(p), "pool updated", nil)
}

// ChangeStatus PATCH /api/pools/:id/status {status}
func (h *PoolHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,pool_status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.ChangeStatus(c.Request.Context(), actorFrom(c), c.Param("id"), entity.PoolStatus(req.Status))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPool(p), "pool status updated", nil)
}

// UploadImage POST /api/pools/:id/image (multipart "image")
func (h *PoolHandler) UploadImage(c *gin.Context) {
	up, f, ok := readUpload(c, "image")
	if !ok {
		return
	}
	defer f.Close()
	p, err := h.Svc.UploadImage(c.Request.Context(), actorFrom(c), c.Param("id"), up)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPool(p), "pool image updated", nil)
}

// Delete DELETE /api/pools/:id (admin)
func (h *PoolHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "pool deleted", nil)
}
