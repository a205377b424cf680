package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
	"github.com/fptsbe/fleetengine-backend/payment"
)

func (a *API) listPaymentsHandler(c *gin.Context) {
	payments, err := a.repos.Payments.GetPayments(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (a *API) myPaymentsHandler(c *gin.Context) {
	payments, err := a.repos.Payments.GetPaymentsByUser(c, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

type chargeRequest struct {
	// AllowNegative lets an admin settle a payment the balance does not
	// cover. Ignored for students.
	AllowNegative bool `json:"allowNegative"`
}

func (a *API) chargeHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req chargeRequest
	if c.Request.ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			middleware.GetLogger(c).Error("Failed to bind request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := a.ctrl.Charge(c, currentUser(c), id, req.AllowNegative)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) refundHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := a.ctrl.Refund(c, currentUser(c), id)
	if errors.Is(err, payment.ErrAlreadyRefunded) {
		// Refunding twice is not a fault, just nothing left to do.
		c.JSON(http.StatusOK, gin.H{"ok": "payment already refunded", "payment": p})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
