package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
)

// bikeTasksHandler lists the service history of one bike.
func (a *API) bikeTasksHandler(c *gin.Context) {
	b, err := a.repos.Bikes.GetBike(c, c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}

	tasks, err := a.repos.Tasks.GetTasksForBike(c, b.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *API) listTasksHandler(c *gin.Context) {
	tasks, err := a.repos.Tasks.GetTasks(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type assignTaskRequest struct {
	TechnicianID uuid.UUID `json:"technicianId" binding:"required"`
}

func (a *API) assignTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req assignTaskRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := a.ctrl.AssignTask(c, currentUser(c), id, req.TechnicianID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) completeTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := a.ctrl.CompleteTask(c, currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type updateTaskRequest struct {
	Description string `json:"description" binding:"required"`
}

func (a *API) updateTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.repos.Tasks.UpdateDescription(c, id, req.Description); err != nil {
		writeError(c, err)
		return
	}

	t, err := a.repos.Tasks.GetTask(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
