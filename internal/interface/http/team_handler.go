package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/pkg/response"
)

type TeamHandler struct {
	Svc    *app.TeamMemberService
	Logger *logrus.Logger
}

func NewTeamHandler(svc *app.TeamMemberService, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{Svc: svc, Logger: logger}
}

type teamMemberRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=120"`
	Role         *string `json:"role" binding:"omitempty,max=120"`
	Bio          *string `json:"bio" binding:"omitempty,max=2000"`
	AvatarURL    *string `json:"avatar_url" binding:"omitempty,url"`
	DisplayOrder *int    `json:"display_order" binding:"omitempty,min=0"`
}

func (r teamMemberRequest) input() app.TeamMemberInput {
	return app.TeamMemberInput{Name: r.Name, Role: r.Role, Bio: r.Bio, AvatarURL: r.AvatarURL, DisplayOrder: r.DisplayOrder}
}

// List GET /api/team-members
func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(members, toTeamMember), "team", nil)
}

// Create POST /api/team-members (admin)
func (h *TeamHandler) Create(c *gin.Context) {
	var req teamMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil || req.Role == nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"name": "required", "role": "required"})
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toTeamMember(m), "team member created", nil)
}

// Update PATCH /api/team-members/:id (admin)
func (h *TeamHandler) Update(c *gin.Context) {
	var req teamMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := idParam(c, app.ErrTeamMemberNotFound)
	if !ok {
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTeamMember(m), "team member updated", nil)
}

// UploadAvatar POST /api/team-members/:id/avatar (admin, multipart "image")
func (h *TeamHandler) UploadAvatar(c *gin.Context) {
	id, ok := idParam(c, app.ErrTeamMemberNotFound)
	if !ok {
		return
	}
	up, f, ok := readUpload(c, "image")
	if !ok {
		return
	}
	defer f.Close()
	m, err := h.Svc.UploadAvatar(c.Request.Context(), id, up)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTeamMember(m), "team member avatar updated", nil)
}

// Delete DELETE /api/team-members/:id (admin)
func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, app.ErrTeamMemberNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "team member deleted", nil)
}
