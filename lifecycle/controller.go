// Package lifecycle is the state machine coupling bikes, trips, payments,
// alerts and maintenance tasks. Every transition runs inside one database
// transaction that first locks the bike row, so there is a single logical
// writer per bike and a failed step never leaves a partial write behind.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fptsbe/fleetengine-backend/audit"
	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/user"
)

var transitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bike_transitions_total",
		Help: "Lifecycle transitions by action and outcome",
	},
	[]string{"action", "outcome"},
)

// RegisterMetrics registers the lifecycle counters with the given registry.
func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(transitionsTotal)
}

type Controller struct {
	db       *sqlx.DB
	models   *bikemodel.Repository
	payments *payment.Repository
	gate     bikemodel.Gate
	logger   *slog.Logger
}

func NewController(db *sqlx.DB, models *bikemodel.Repository, payments *payment.Repository, gate bikemodel.Gate, logger *slog.Logger) *Controller {
	return &Controller{
		db:       db,
		models:   models,
		payments: payments,
		gate:     gate,
		logger:   logger,
	}
}

// lockBike fetches the bike row FOR UPDATE inside the caller's transaction.
// Every transition starts here.
func lockBike(ctx context.Context, tx *sqlx.Tx, label string) (bike.Bike, error) {
	var b bike.Bike
	err := tx.GetContext(ctx, &b, lockBikeQuery, label)
	if errors.Is(err, sql.ErrNoRows) {
		return b, bike.ErrNotFound
	}
	return b, err
}

const lockBikeQuery = `SELECT * FROM bikes WHERE label = $1 FOR UPDATE`

func (c *Controller) observe(ctx context.Context, action Action, err error) {
	o := outcome(err)
	transitionsTotal.WithLabelValues(string(action), o).Inc()
	if o == "error" {
		c.logger.ErrorContext(ctx, "transition failed", "action", action, "error", err)
	}
}

// outcome buckets a transition result for the metrics. Informational no-ops
// such as refunding an already refunded payment count as ok, not errors.
func outcome(err error) string {
	switch {
	case err == nil, errors.Is(err, payment.ErrAlreadyRefunded):
		return "ok"
	case isRejection(err):
		return "rejected"
	default:
		return "error"
	}
}

func isRejection(err error) bool {
	var rejErr *RejectionError
	var authzErr *AuthzError
	return errors.As(err, &rejErr) || errors.As(err, &authzErr)
}

func span(ctx context.Context, name, label string) (context.Context, func()) {
	ctx, s := otel.GetTracerProvider().Tracer("lifecycle").Start(ctx, name)
	s.SetAttributes(attribute.String("bike.label", label))
	return ctx, func() { s.End() }
}

func (c *Controller) audit(ctx context.Context, tx sqlx.ExtContext, actor user.User, action Action, entity, entityID, detail string) error {
	actorID := actor.ID
	return audit.AppendTx(ctx, tx, audit.Entry{
		ActorID:  &actorID,
		Action:   string(action),
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
}

// featureEnabled resolves the bike's model and applies the product-tier gate.
// An unknown model enables nothing.
func (c *Controller) featureEnabled(ctx context.Context, modelID string, f bikemodel.Feature) (bool, error) {
	m, err := c.models.GetModel(ctx, modelID)
	if errors.Is(err, bikemodel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.gate.Enabled(m, f), nil
}
