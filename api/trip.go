package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/trip"
)

type rideState struct {
	InProgress bool       `json:"inProgress"`
	Trip       *trip.Trip `json:"trip,omitempty"`
}

// bikeTripHandler reports the in-progress ride on a bike, if any.
func (a *API) bikeTripHandler(c *gin.Context) {
	b, err := a.repos.Bikes.GetBike(c, c.Param("label"))
	if err != nil {
		writeError(c, err)
		return
	}

	t, err := a.repos.Trips.OpenTripForBike(c, b.ID)
	if errors.Is(err, trip.ErrNoOpenTrip) {
		c.JSON(http.StatusOK, rideState{InProgress: false})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rideState{InProgress: true, Trip: &t})
}

func (a *API) getTripHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := a.repos.Trips.GetTrip(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) listTripsHandler(c *gin.Context) {
	trips, err := a.repos.Trips.GetTrips(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (a *API) myTripsHandler(c *gin.Context) {
	trips, err := a.repos.Trips.GetTripsByUser(c, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}
