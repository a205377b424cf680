package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *API) fleetHandler(c *gin.Context) {
	snap := a.mon.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"snapshot":   snap,
		"ageSeconds": a.mon.Age(time.Now()).Seconds(),
	})
}
