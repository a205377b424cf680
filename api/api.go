package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/fptsbe/fleetengine-backend/alert"
	"github.com/fptsbe/fleetengine-backend/announcement"
	"github.com/fptsbe/fleetengine-backend/audit"
	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/geofence"
	"github.com/fptsbe/fleetengine-backend/internal/auth0"
	"github.com/fptsbe/fleetengine-backend/internal/middleware"
	"github.com/fptsbe/fleetengine-backend/internal/o11y"
	"github.com/fptsbe/fleetengine-backend/lifecycle"
	"github.com/fptsbe/fleetengine-backend/maintenance"
	"github.com/fptsbe/fleetengine-backend/monitor"
	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/trip"
	"github.com/fptsbe/fleetengine-backend/user"
)

type Repos struct {
	Bikes         *bike.Repository
	Models        *bikemodel.Repository
	Users         *user.Repository
	Trips         *trip.Repository
	Payments      *payment.Repository
	Alerts        *alert.Repository
	Tasks         *maintenance.Repository
	Geofences     *geofence.Repository
	Announcements *announcement.Repository
	Audit         *audit.Repository
}

// Config carries the API-surface knobs from the CLI.
type Config struct {
	Auth0Domain     string
	Audience        string
	MetricsUsername string
	MetricsPassword string
}

type API struct {
	r     *gin.Engine
	repos Repos
	ctrl  *lifecycle.Controller
	mon   *monitor.Monitor
	gate  bikemodel.Gate
	idp   auth0.Client
	cfg   Config
}

func New(repos Repos, ctrl *lifecycle.Controller, mon *monitor.Monitor, gate bikemodel.Gate, idp auth0.Client, obs *o11y.Observability, cfg Config) (*API, error) {
	a := &API{
		r:     gin.New(),
		repos: repos,
		ctrl:  ctrl,
		mon:   mon,
		gate:  gate,
		idp:   idp,
		cfg:   cfg,
	}

	lifecycle.RegisterMetrics(obs.Registry)

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))
	a.r.Use(middleware.RateLimit(rate.Limit(50), 100))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := a.r.Group("/metrics")
	if cfg.MetricsUsername != "" {
		metrics.Use(gin.BasicAuth(gin.Accounts{cfg.MetricsUsername: cfg.MetricsPassword}))
	}
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	authn, err := a.authMiddleware()
	if err != nil {
		return nil, err
	}

	protected := a.r.Group("/")
	protected.Use(authn, a.identity())
	a.routes(protected)

	return a, nil
}

// authMiddleware picks real JWT validation when an Auth0 domain is configured
// and falls back to header identity for local development.
func (a *API) authMiddleware() (gin.HandlerFunc, error) {
	if a.cfg.Auth0Domain != "" {
		return middleware.JWT(a.cfg.Auth0Domain, a.cfg.Audience)
	}
	return middleware.HeaderAuth(), nil
}

func (a *API) routes(g *gin.RouterGroup) {
	g.GET("/bikes", a.listBikesHandler)
	g.POST("/bikes", a.requireRole(user.RoleAdmin), a.createBikeHandler)
	g.GET("/bikes/:label", a.getBikeHandler)
	g.GET("/bikes/:label/trip", a.bikeTripHandler)
	g.GET("/bikes/:label/maintenance", a.bikeTasksHandler)
	g.DELETE("/bikes/:label", a.requireRole(user.RoleAdmin), a.deleteBikeHandler)
	g.PATCH("/bikes/:label/status", a.requireRole(user.RoleAdmin), a.setBikeStatusHandler)

	g.POST("/bikes/:label/unlock", a.unlockHandler)
	g.POST("/bikes/:label/lock", a.lockHandler)
	g.POST("/bikes/:label/report-issue", a.reportIssueHandler)
	g.POST("/bikes/:label/anti-theft/toggle", a.toggleAntiTheftHandler)
	g.POST("/bikes/:label/simulate-movement", a.simulateMovementHandler)
	g.POST("/bikes/:label/remote-lock", a.remoteLockHandler)
	g.POST("/bikes/:label/reactivate", a.reactivateHandler)

	g.GET("/models", a.listModelsHandler)

	g.GET("/trips", a.requireRole(user.RoleAdmin), a.listTripsHandler)
	g.GET("/trips/me", a.myTripsHandler)
	g.GET("/trips/:id", a.requireRole(user.RoleAdmin), a.getTripHandler)

	g.GET("/payments", a.requireRole(user.RoleAdmin), a.listPaymentsHandler)
	g.GET("/payments/me", a.myPaymentsHandler)
	g.POST("/payments/:id/charge", a.chargeHandler)
	g.POST("/payments/:id/refund", a.refundHandler)

	g.GET("/alerts", a.listAlertsHandler)
	g.GET("/alerts/:id", a.requireRole(user.RoleTechnician, user.RoleAdmin), a.getAlertHandler)
	g.POST("/alerts/:id/resolve", a.resolveAlertHandler)

	g.GET("/maintenance", a.listTasksHandler)
	g.POST("/maintenance/:id/assign", a.assignTaskHandler)
	g.POST("/maintenance/:id/complete", a.completeTaskHandler)
	g.PATCH("/maintenance/:id", a.requireRole(user.RoleAdmin), a.updateTaskHandler)

	g.GET("/users", a.requireRole(user.RoleAdmin), a.listUsersHandler)
	g.GET("/users/me", a.meHandler)
	g.GET("/users/:id", a.requireRole(user.RoleAdmin), a.getUserHandler)
	g.PATCH("/users/:id", a.requireRole(user.RoleAdmin), a.updateUserHandler)
	g.GET("/technicians", a.listTechniciansHandler)
	g.PATCH("/users/:id/assigned-bike", a.requireRole(user.RoleAdmin), a.assignBikeHandler)

	g.GET("/geofences", a.listGeofencesHandler)
	g.GET("/geofences/:id", a.getGeofenceHandler)

	g.GET("/announcements", a.listAnnouncementsHandler)
	g.POST("/announcements", a.requireRole(user.RoleAdmin), a.createAnnouncementHandler)
	g.PUT("/announcements/:id", a.requireRole(user.RoleAdmin), a.updateAnnouncementHandler)
	g.DELETE("/announcements/:id", a.requireRole(user.RoleAdmin), a.deleteAnnouncementHandler)

	g.GET("/audit-logs", a.requireRole(user.RoleAdmin), a.listAuditLogsHandler)

	g.GET("/monitor/fleet", a.fleetHandler)
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// parseID reads a uuid path parameter, answering 400 itself on garbage.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP statuses. Anything unmapped is a
// 500 with the raw message.
func writeError(c *gin.Context, err error) {
	logger := middleware.GetLogger(c)

	var authzErr *lifecycle.AuthzError
	var rejErr *lifecycle.RejectionError
	switch {
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &rejErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, bike.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, trip.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, alert.ErrNotFound),
		errors.Is(err, maintenance.ErrNotFound),
		errors.Is(err, announcement.ErrNotFound),
		errors.Is(err, bikemodel.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bike.ErrInUse),
		errors.Is(err, bike.ErrLabelTaken),
		errors.Is(err, bike.ErrHasTrips),
		errors.Is(err, bike.ErrStatusManaged),
		errors.Is(err, payment.ErrNotPending),
		errors.Is(err, payment.ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, bike.ErrInvalidStatus),
		errors.Is(err, bike.ErrAntiTheftUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
