package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
	"github.com/fptsbe/fleetengine-backend/user"
)

type userResponse struct {
	ID                uuid.UUID `json:"id"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Role              user.Role `json:"role"`
	Status            string    `json:"status"`
	BalanceCents      int64     `json:"balanceCents"`
	AssignedBikeLabel *string   `json:"assignedBikeLabel,omitempty"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:                u.ID,
		FullName:          u.FullName.String,
		Email:             u.Email.String,
		Role:              u.Role,
		Status:            u.Status,
		BalanceCents:      u.BalanceCents,
		AssignedBikeLabel: u.AssignedBikeLabel,
	}
}

func (a *API) listUsersHandler(c *gin.Context) {
	users, err := a.repos.Users.GetUsers(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}

func (a *API) getUserHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	u, err := a.repos.Users.GetUser(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

func (a *API) listTechniciansHandler(c *gin.Context) {
	techs, err := a.repos.Users.GetTechnicians(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(techs))
	for _, u := range techs {
		resp = append(resp, toUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

type updateUserRequest struct {
	Role   *user.Role `json:"role"`
	Status *string    `json:"status"`
}

// updateUserHandler edits role and account status. Admin accounts are
// immutable through this endpoint, and nobody can be promoted to admin, so
// there is always at least one admin left.
func (a *API) updateUserHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := a.repos.Users.GetUser(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if target.Role == user.RoleAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "admin accounts cannot be edited"})
		return
	}

	role := target.Role
	if req.Role != nil {
		role = *req.Role
		if !role.Valid() || role == user.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be Student or Technician"})
			return
		}
	}
	status := target.Status
	if req.Status != nil {
		status = *req.Status
		if status != user.StatusActive && status != user.StatusSuspended {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be Active or Suspended"})
			return
		}
	}

	u, err := a.repos.Users.UpdateAccount(c, id, role, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

type assignBikeRequest struct {
	// Label nil unassigns the current bike.
	Label *string `json:"label"`
}

func (a *API) assignBikeHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req assignBikeRequest
	if err := c.Bind(&req); err != nil {
		middleware.GetLogger(c).Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Label != nil {
		if _, err := a.repos.Bikes.GetBike(c, *req.Label); err != nil {
			writeError(c, err)
			return
		}
	}

	if err := a.repos.Users.AssignBike(c, id, req.Label); err != nil {
		writeError(c, err)
		return
	}

	u, err := a.repos.Users.GetUser(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}
