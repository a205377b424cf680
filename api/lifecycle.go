package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
)

// The handlers below are thin shells over the lifecycle controller: bind,
// call, map the error. All state rules live in the controller.

func (a *API) unlockHandler(c *gin.Context) {
	t, err := a.ctrl.Unlock(c, currentUser(c), c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) lockHandler(c *gin.Context) {
	res, err := a.ctrl.Lock(c, currentUser(c), c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trip":          res.Trip,
		"payment":       res.Payment,
		"billedMinutes": res.BilledMinutes,
	})
}

type reportIssueRequest struct {
	IssueType string `json:"issueType" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
}

func (a *API) reportIssueHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req reportIssueRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := a.ctrl.ReportIssue(c, currentUser(c), c.Param("label"), req.IssueType, req.Detail)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *API) toggleAntiTheftHandler(c *gin.Context) {
	on, err := a.ctrl.ToggleAntiTheft(c, currentUser(c), c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"antiTheftActive": on})
}

func (a *API) simulateMovementHandler(c *gin.Context) {
	res, err := a.ctrl.SimulateMovement(c, currentUser(c), c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alert": res.Alert,
		"task":  res.Task,
	})
}

func (a *API) remoteLockHandler(c *gin.Context) {
	if err := a.ctrl.RemoteLock(c, currentUser(c), c.Param("label")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": "bike locked for maintenance"})
}

func (a *API) reactivateHandler(c *gin.Context) {
	if err := a.ctrl.Reactivate(c, currentUser(c), c.Param("label")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": "bike reactivated"})
}
