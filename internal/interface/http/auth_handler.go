package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/response"
)

type AuthHandler struct {
	Svc     *app.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
	// ExposeResetLink returns the reset link in the response body. Only set
	// when no mail is sent (local development).
	ExposeResetLink bool
}

func NewAuthHandler(svc *app.AuthService, logger *logrus.Logger, cookies *helpers.Manager, exposeResetLink bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies, ExposeResetLink: exposeResetLink}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Password string `json:"password" binding:"required,pwd"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func tokenMeta(pair app.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.Svc.Signup(c.Request.Context(), app.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, toUser(u), "account created", tokenMeta(pair))
}

// Signin POST /api/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if h.Logger != nil && errors.Is(err, app.ErrInvalidCredentials) {
			h.Logger.WithFields(logrus.Fields{"ip": clientIP(c)}).Info("failed sign-in")
		}
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, toUser(u), "login successful", tokenMeta(pair))
}

// Refresh POST /api/auth/refresh. The refresh token comes from its cookie
// or a JSON body for non-browser clients.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&body)
		refresh = body.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, toUser(u), "token refreshed", tokenMeta(pair))
}

// Signout POST /api/auth/signout (optional auth)
func (h *AuthHandler) Signout(c *gin.Context) {
	if uid := c.GetString(middleware.CtxUserID); uid != "" {
		if err := h.Svc.Revoke(c.Request.Context(), uid); err != nil && h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", uid).Warn("session revoke failed")
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success[any](c, http.StatusOK, gin.H{
		"id":    c.GetString(middleware.CtxUserID),
		"name":  c.GetString(middleware.CtxUserName),
		"email": c.GetString(middleware.CtxUserEmail),
		"role":  c.GetString(middleware.CtxUserRole),
	}, "session", nil)
}

// ResetInit POST /api/auth/reset/init {email}. Always 200 so accounts
// cannot be enumerated.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.Svc.ResetInit(c.Request.Context(), req.Email, clientIP(c))
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("reset init failed")
	}
	data := gin.H{"requested": true}
	if h.ExposeResetLink && link != "" {
		data["reset_link"] = link
	}
	response.Success[any](c, http.StatusOK, data, "if the email exists, a reset link has been sent", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResetConfirm(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
