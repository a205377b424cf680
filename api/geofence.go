package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/geofence"
)

type geofenceResponse struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Lat          float64       `json:"latitude"`
	Lng          float64       `json:"longitude"`
	RadiusMeters int           `json:"radiusMeters"`
	Type         geofence.Type `json:"type"`
}

func toGeofenceResponse(g geofence.Geofence) geofenceResponse {
	return geofenceResponse{
		ID:           g.ID,
		Name:         g.Name,
		Lat:          g.Center.P.X,
		Lng:          g.Center.P.Y,
		RadiusMeters: g.RadiusMeters,
		Type:         g.Type,
	}
}

func (a *API) getGeofenceHandler(c *gin.Context) {
	g, err := a.repos.Geofences.GetGeofence(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGeofenceResponse(g))
}

func (a *API) listGeofencesHandler(c *gin.Context) {
	geofences, err := a.repos.Geofences.GetGeofences()
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]geofenceResponse, 0, len(geofences))
	for _, g := range geofences {
		resp = append(resp, toGeofenceResponse(g))
	}
	c.JSON(http.StatusOK, resp)
}
