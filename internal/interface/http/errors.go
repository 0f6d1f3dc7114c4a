package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/villagemarket/village-market/internal/application"
	"github.com/villagemarket/village-market/internal/infrastructure/payment"
	"github.com/villagemarket/village-market/pkg/helpers"
	"github.com/villagemarket/village-market/pkg/response"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{app.ErrInvalidCredentials, http.StatusUnauthorized},
	{app.ErrInvalidToken, http.StatusUnauthorized},
	{app.ErrAccountDisabled, http.StatusForbidden},
	{app.ErrForbidden, http.StatusForbidden},
	{app.ErrCreatorNotVerified, http.StatusForbidden},
	{app.ErrSelfAction, http.StatusForbidden},

	{app.ErrUserNotFound, http.StatusNotFound},
	{app.ErrCreatorNotFound, http.StatusNotFound},
	{app.ErrPoolNotFound, http.StatusNotFound},
	{app.ErrContributionNotFound, http.StatusNotFound},
	{app.ErrTeamMemberNotFound, http.StatusNotFound},

	{app.ErrEmailTaken, http.StatusConflict},
	{app.ErrCreatorExists, http.StatusConflict},
	{app.ErrUserHasHistory, http.StatusConflict},
	{app.ErrCreatorHasPools, http.StatusConflict},
	{app.ErrPoolHasContributions, http.StatusConflict},
	{app.ErrPoolTargetLocked, http.StatusConflict},
	{app.ErrCreatorLocked, http.StatusConflict},
	{app.ErrInvalidTransition, http.StatusConflict},
	{app.ErrSlotsUnavailable, http.StatusConflict},
	{app.ErrPoolClosed, http.StatusConflict},
	{app.ErrNotPaid, http.StatusConflict},
	{app.ErrInvalidDelivery, http.StatusConflict},

	{app.ErrWrongPassword, http.StatusBadRequest},
	{app.ErrInvalidDeadline, http.StatusBadRequest},
	{app.ErrInvalidGoal, http.StatusBadRequest},
	{app.ErrInvalidSlots, http.StatusBadRequest},
	{app.ErrAmountMismatch, http.StatusBadRequest},
	{app.ErrInvalidImage, http.StatusBadRequest},
	{app.ErrInvalidSignature, http.StatusUnauthorized},

	{app.ErrPaymentFailed, http.StatusPaymentRequired},
	{app.ErrPaymentPending, http.StatusAccepted},
	{app.ErrPaymentsDisabled, http.StatusServiceUnavailable},
	{app.ErrUploadsDisabled, http.StatusServiceUnavailable},
	{app.ErrSessionUnavailable, http.StatusServiceUnavailable},
	{payment.ErrGateway, http.StatusBadGateway},
}

// statusOf maps a service error to its HTTP status; unknown errors are 500.
func statusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError responds with the envelope for err. Internal errors are logged
// and their text is not exposed.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
		if status == http.StatusBadGateway {
			response.Error[any](c, status, "payment gateway unavailable", nil)
			return
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}
