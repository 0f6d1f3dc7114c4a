package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/response"
)

type CreatorHandler struct {
	Svc    *app.CreatorService
	Pools  *app.PoolService
	Logger *logrus.Logger
}

func NewCreatorHandler(svc *app.CreatorService, pools *app.PoolService, logger *logrus.Logger) *CreatorHandler {
	return &CreatorHandler{Svc: svc, Pools: pools, Logger: logger}
}

type registerCreatorRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=120"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required,phone"`
	Organization string `json:"organization" binding:"omitempty,max=160"`
	Address      string `json:"address" binding:"required,max=255"`
	IDType       string `json:"id_type" binding:"required,id_type"`
	IDNumber     string `json:"id_number" binding:"required,min=4,max=40"`
}

type updateCreatorRequest struct {
	Name         string `json:"name" binding:"omitempty,min=2,max=120"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" binding:"omitempty,phone"`
	Organization string `json:"organization" binding:"omitempty,max=160"`
	Address      string `json:"address" binding:"omitempty,max=255"`
	IDType       string `json:"id_type" binding:"omitempty,id_type"`
	IDNumber     string `json:"id_number" binding:"omitempty,min=4,max=40"`
}

func (r updateCreatorRequest) input() app.CreatorInput {
	return app.CreatorInput{
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Organization: r.Organization,
		Address:      r.Address,
		IDType:       entity.IDType(r.IDType),
		IDNumber:     r.IDNumber,
	}
}

// Register POST /api/creators
func (h *CreatorHandler) Register(c *gin.Context) {
	var req registerCreatorRequest
	if !bindJSON(c, &req) {
		return
	}
	cr, err := h.Svc.Register(c.Request.Context(), c.GetString(middleware.CtxUserID), updateCreatorRequest(req).input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toCreator(cr), "creator profile submitted for review", nil)
}

// Mine GET /api/creators/me
func (h *CreatorHandler) Mine(c *gin.Context) {
	cr, err := h.Svc.Mine(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCreator(cr), "creator profile", nil)
}

// UpdateMine PATCH /api/creators/me
func (h *CreatorHandler) UpdateMine(c *gin.Context) {
	var req updateCreatorRequest
	if !bindJSON(c, &req) {
		return
	}
	cr, err := h.Svc.UpdateMine(c.Request.Context(), c.GetString(middleware.CtxUserID), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCreator(cr), "creator profile updated", nil)
}

// MyPools GET /api/creators/me/pools
func (h *CreatorHandler) MyPools(c *gin.Context) {
	var q listPoolsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	pools, total, err := h.Pools.ListForCreator(c.Request.Context(), c.GetString(middleware.CtxUserID), q.filter(page))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(pools, toPool), "pools", pageMeta(page, total))
}

type listCreatorsQuery struct {
	Status string `form:"status" binding:"omitempty,creator_status"`
	Q      string `form:"q" binding:"omitempty,max=100"`
	pageQuery
}

// List GET /api/admin/creators
func (h *CreatorHandler) List(c *gin.Context) {
	var q listCreatorsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	creators, total, err := h.Svc.List(c.Request.Context(), repo.CreatorFilter{Status: q.Status, Query: q.Q, Page: page})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(creators, toCreator), "creators", pageMeta(page, total))
}

// Get GET /api/admin/creators/:id
func (h *CreatorHandler) Get(c *gin.Context) {
	id, ok := idParam(c, app.ErrCreatorNotFound)
	if !ok {
		return
	}
	cr, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCreator(cr), "creator", nil)
}

// SetStatus PATCH /api/admin/creators/:id/status {status}
func (h *CreatorHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,creator_status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	id, ok := idParam(c, app.ErrCreatorNotFound)
	if !ok {
		return
	}
	cr, err := h.Svc.SetStatus(c.Request.Context(), id, entity.CreatorStatus(req.Status))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCreator(cr), "creator status updated", nil)
}

// Delete DELETE /api/admin/creators/:id
func (h *CreatorHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, app.ErrCreatorNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "creator deleted", nil)
}
