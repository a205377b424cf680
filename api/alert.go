package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/alert"
	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/user"
)

// listAlertsHandler shows the whole alert feed to staff. Students only see
// alerts for the bike linked to their account.
func (a *API) listAlertsHandler(c *gin.Context) {
	u := currentUser(c)

	if u.Role != user.RoleStudent {
		alerts, err := a.repos.Alerts.GetAlerts(c)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, alerts)
		return
	}

	if u.AssignedBikeLabel == nil {
		c.JSON(http.StatusOK, []alert.Alert{})
		return
	}
	b, err := a.repos.Bikes.GetBike(c, *u.AssignedBikeLabel)
	if errors.Is(err, bike.ErrNotFound) {
		c.JSON(http.StatusOK, []alert.Alert{})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	alerts, err := a.repos.Alerts.GetAlertsForBike(c, b.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// getAlertHandler returns one alert together with the label of the bike it
// fired on, for the staff incident view.
func (a *API) getAlertHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := a.repos.Alerts.GetAlert(c, id)
	if err != nil {
		writeError(c, err)
		return
	}

	label := ""
	if b, err := a.repos.Bikes.GetBikeByID(c, found.BikeID); err == nil {
		label = b.Label
	}

	c.JSON(http.StatusOK, gin.H{"alert": found, "bikeLabel": label})
}

func (a *API) resolveAlertHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resolved, err := a.ctrl.ResolveAlert(c, currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
