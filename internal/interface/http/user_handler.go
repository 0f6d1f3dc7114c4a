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

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=120"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

// UpdateProfile PATCH /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserID), app.UpdateProfileInput{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

// ChangePassword POST /api/profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserID), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart "image")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	up, f, ok := readUpload(c, "image")
	if !ok {
		return
	}
	defer f.Close()
	u, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString(middleware.CtxUserID), up)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "avatar updated", nil)
}

type listUsersQuery struct {
	Role   string `form:"role" binding:"omitempty,user_role"`
	Status string `form:"status" binding:"omitempty,user_status"`
	Q      string `form:"q" binding:"omitempty,max=100"`
	pageQuery
}

// List GET /api/users (admin)
func (h *UserHandler) List(c *gin.Context) {
	var q listUsersQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	users, total, err := h.Svc.List(c.Request.Context(), repo.UserFilter{Role: q.Role, Status: q.Status, Query: q.Q, Page: page})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(users, toUser), "users", pageMeta(page, total))
}

// Get GET /api/users/:id (admin)
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c, app.ErrUserNotFound)
	if !ok {
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "user", nil)
}

type adminUpdateUserRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=120"`
	Phone  *string `json:"phone" binding:"omitempty,phone"`
	Role   *string `json:"role" binding:"omitempty,user_role"`
	Status *string `json:"status" binding:"omitempty,user_status"`
}

// Update PATCH /api/users/:id (admin)
func (h *UserHandler) Update(c *gin.Context) {
	var req adminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	in := app.AdminUpdateInput{Name: req.Name, Phone: req.Phone}
	if req.Role != nil {
		r := entity.Role(*req.Role)
		in.Role = &r
	}
	if req.Status != nil {
		s := entity.UserStatus(*req.Status)
		in.Status = &s
	}
	id, ok := idParam(c, app.ErrUserNotFound)
	if !ok {
		return
	}
	u, err := h.Svc.AdminUpdate(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "user updated", nil)
}

// Delete DELETE /api/users/:id (admin)
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, app.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}
