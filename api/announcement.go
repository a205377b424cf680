package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
)

func (a *API) listAnnouncementsHandler(c *gin.Context) {
	announcements, err := a.repos.Announcements.GetAnnouncements(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

type announcementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (a *API) createAnnouncementHandler(c *gin.Context) {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := a.repos.Announcements.Create(c, req.Title, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (a *API) updateAnnouncementHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := a.repos.Announcements.Update(c, id, req.Title, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *API) deleteAnnouncementHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.repos.Announcements.Delete(c, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) listAuditLogsHandler(c *gin.Context) {
	limit := 100
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-1000"})
			return
		}
		limit = n
	}

	entries, err := a.repos.Audit.GetEntries(c, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
