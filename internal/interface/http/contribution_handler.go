package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	"github.com/villagemarket/village-market/internal/interface/middleware"
	"github.com/villagemarket/village-market/pkg/response"
)

const maxWebhookBytes = 1 << 20

type ContributionHandler struct {
	Svc        *app.ContributionService
	Logger     *logrus.Logger
	SuccessURL string
	FailureURL string
}

func NewContributionHandler(svc *app.ContributionService, logger *logrus.Logger, successURL, failureURL string) *ContributionHandler {
	return &ContributionHandler{Svc: svc, Logger: logger, SuccessURL: successURL, FailureURL: failureURL}
}

type initializePaymentRequest struct {
	PoolID string `json:"pool_id" binding:"required,uuid"`
	Slots  int    `json:"slots" binding:"required,min=1"`
	Amount *int64 `json:"amount" binding:"omitempty,gt=0"`
}

// Initialize POST /api/payments/initialize
func (h *ContributionHandler) Initialize(c *gin.Context) {
	var req initializePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.Svc.Initialize(c.Request.Context(), c.GetString(middleware.CtxUserID), app.InitializeInput{
		PoolID: req.PoolID,
		Slots:  req.Slots,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{
		"contribution":      toContribution(co.Contribution),
		"authorization_url": co.AuthorizationURL,
		"access_code":       co.AccessCode,
		"reference":         co.Contribution.Reference,
	}, "payment initialized", nil)
}

// Verify GET /api/payments/verify/:reference (payer, pool owner or admin)
func (h *ContributionHandler) Verify(c *gin.Context) {
	co, err := h.Svc.Verify(c.Request.Context(), actorFrom(c), c.Param("reference"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContribution(co), "payment verified", nil)
}

// Callback GET /api/payments/callback?reference= is where the gateway sends
// the browser back. It settles and redirects to the frontend.
func (h *ContributionHandler) Callback(c *gin.Context) {
	ref := c.Query("reference")
	if ref == "" {
		ref = c.Query("trxref")
	}
	if ref == "" {
		c.Redirect(http.StatusFound, withQuery(h.FailureURL, "", "missing_reference"))
		return
	}
	co, err := h.Svc.Confirm(c.Request.Context(), ref)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, withQuery(h.SuccessURL, co.Reference, ""))
	case errors.Is(err, app.ErrPaymentPending):
		c.Redirect(http.StatusFound, withQuery(h.SuccessURL, ref, "pending"))
	default:
		if h.Logger != nil && statusOf(err) >= http.StatusInternalServerError {
			h.Logger.WithError(err).WithField("reference", ref).Error("payment callback failed")
		}
		c.Redirect(http.StatusFound, withQuery(h.FailureURL, ref, "failed"))
	}
}

func withQuery(base, reference, status string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if reference != "" {
		q.Set("reference", reference)
	}
	if status != "" {
		q.Set("status", status)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Webhook POST /api/payments/webhook. Signed events always get 200 so the
// gateway does not retry events we chose to ignore.
func (h *ContributionHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable body", nil)
		return
	}
	err = h.Svc.HandleWebhook(c.Request.Context(), body, c.GetHeader(payment.SignatureHeader))
	switch {
	case errors.Is(err, app.ErrInvalidSignature):
		response.Error[any](c, http.StatusUnauthorized, "invalid signature", nil)
		return
	case errors.Is(err, app.ErrPaymentsDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "payments are not configured", nil)
		return
	case err != nil && h.Logger != nil:
		h.Logger.WithError(err).Warn("webhook settlement failed")
	}
	response.Success[any](c, http.StatusOK, gin.H{"received": true}, "ok", nil)
}

type listContributionsQuery struct {
	Status         string `form:"status" binding:"omitempty,contribution_status"`
	DeliveryStatus string `form:"delivery_status" binding:"omitempty,delivery_status"`
	PoolID         string `form:"pool_id" binding:"omitempty,uuid"`
	pageQuery
}

func (q listContributionsQuery) filter(page repo.Page) repo.ContributionFilter {
	return repo.ContributionFilter{PoolID: q.PoolID, Status: q.Status, DeliveryStatus: q.DeliveryStatus, Page: page}
}

func (h *ContributionHandler) respondList(c *gin.Context, items []entity.Contribution, total int, page repo.Page, err error) {
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapSlice(items, toContribution), "contributions", pageMeta(page, total))
}

// Mine GET /api/contributions/me
func (h *ContributionHandler) Mine(c *gin.Context) {
	var q listContributionsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	items, total, err := h.Svc.ListMine(c.Request.Context(), c.GetString(middleware.CtxUserID), q.filter(page))
	h.respondList(c, items, total, page, err)
}

// Get GET /api/contributions/:id (payer, pool owner or admin)
func (h *ContributionHandler) Get(c *gin.Context) {
	id, ok := idParam(c, app.ErrContributionNotFound)
	if !ok {
		return
	}
	co, err := h.Svc.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContribution(co), "contribution", nil)
}

// ForPool GET /api/pools/:id/contributions (pool owner or admin)
func (h *ContributionHandler) ForPool(c *gin.Context) {
	var q listContributionsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	items, total, err := h.Svc.ListForPool(c.Request.Context(), actorFrom(c), c.Param("id"), q.filter(page))
	h.respondList(c, items, total, page, err)
}

// All GET /api/admin/contributions
func (h *ContributionHandler) All(c *gin.Context) {
	var q listContributionsQuery
	if !bindQuery(c, &q) {
		return
	}
	page := q.page()
	items, total, err := h.Svc.ListAll(c.Request.Context(), q.filter(page))
	h.respondList(c, items, total, page, err)
}

// UpdateDelivery PATCH /api/contributions/:id/delivery {delivery_status}
func (h *ContributionHandler) UpdateDelivery(c *gin.Context) {
	var req struct {
		DeliveryStatus string `json:"delivery_status" binding:"required,delivery_status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	id, ok := idParam(c, app.ErrContributionNotFound)
	if !ok {
		return
	}
	co, err := h.Svc.UpdateDelivery(c.Request.Context(), actorFrom(c), id, entity.DeliveryStatus(req.DeliveryStatus))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContribution(co), "delivery status updated", nil)
}
