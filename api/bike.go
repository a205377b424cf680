package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/internal/middleware"
)

type bikeResponse struct {
	ID              uuid.UUID   `json:"id"`
	Label           string      `json:"label"`
	ModelID         string      `json:"modelId"`
	Status          bike.Status `json:"status"`
	BatteryLevel    int         `json:"batteryLevel"`
	LastLocation    string      `json:"lastLocation"`
	Lat             float64     `json:"latitude"`
	Lng             float64     `json:"longitude"`
	AntiTheftActive bool        `json:"antiTheftActive"`
	CurrentUserID   *uuid.UUID  `json:"currentUserId,omitempty"`
	CurrentTripID   *uuid.UUID  `json:"currentTripId,omitempty"`
	Badges          []string    `json:"badges"`
}

func (a *API) toBikeResponse(b bike.Bike, m *bikemodel.BikeModel) bikeResponse {
	return bikeResponse{
		ID:              b.ID,
		Label:           b.Label,
		ModelID:         b.ModelID,
		Status:          b.Status,
		BatteryLevel:    b.BatteryLevel,
		LastLocation:    b.LastLocation,
		Lat:             b.Location.P.X,
		Lng:             b.Location.P.Y,
		AntiTheftActive: b.AntiTheftActive,
		CurrentUserID:   b.CurrentUserID,
		CurrentTripID:   b.CurrentTripID,
		Badges:          a.gate.Badges(m),
	}
}

func (a *API) listBikesHandler(c *gin.Context) {
	bikes, err := a.repos.Bikes.GetBikes(c)
	if err != nil {
		writeError(c, err)
		return
	}

	models, err := a.repos.Models.GetModels(c)
	if err != nil {
		writeError(c, err)
		return
	}
	byID := make(map[string]*bikemodel.BikeModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	resp := make([]bikeResponse, 0, len(bikes))
	for _, b := range bikes {
		resp = append(resp, a.toBikeResponse(b, byID[b.ModelID]))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) getBikeHandler(c *gin.Context) {
	b, err := a.repos.Bikes.GetBike(c, c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}

	m, err := a.repos.Models.GetModel(c, b.ModelID)
	if err != nil && !errors.Is(err, bikemodel.ErrNotFound) {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, a.toBikeResponse(b, m))
}

type createBikeRequest struct {
	Label    string `json:"label" binding:"required"`
	ModelID  string `json:"modelId" binding:"required"`
	Location string `json:"location"`
}

func (a *API) createBikeHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req createBikeRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := a.repos.Models.GetModel(c, req.ModelID); err != nil {
		writeError(c, err)
		return
	}

	b, err := a.repos.Bikes.Create(c, req.Label, req.ModelID, req.Location)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (a *API) deleteBikeHandler(c *gin.Context) {
	if err := a.repos.Bikes.Delete(c, c.Param("label")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setBikeStatusRequest struct {
	Status       bike.Status `json:"status" binding:"required"`
	BatteryLevel *int        `json:"batteryLevel"`
	LastLocation *string     `json:"lastLocation"`
	AntiTheft    *bool       `json:"antiTheft"`
}

func (a *API) setBikeStatusHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req setBikeStatusRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := a.repos.Bikes.SetStatus(c, c.Param("label"), req.Status, bike.StatusUpdate{
		BatteryLevel: req.BatteryLevel,
		LastLocation: req.LastLocation,
		AntiTheft:    req.AntiTheft,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (a *API) listModelsHandler(c *gin.Context) {
	models, err := a.repos.Models.GetModels(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}
