package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts successfully persisted production orders
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabrica_orders_created_total",
		Help: "Number of production orders created",
	})

	// PreviewComputations counts material-preview recomputations
	PreviewComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabrica_preview_computations_total",
		Help: "Number of draft-order preview computations",
	})

	// RecipeFetchFailures counts recipe resolutions that never populated
	// the session cache
	RecipeFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabrica_recipe_fetch_failures_total",
		Help: "Number of failed recipe fetches during preview sessions",
	})

	// ActivePreviewSessions tracks open WebSocket form sessions
	ActivePreviewSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fabrica_preview_sessions_active",
		Help: "Currently open order-form preview sessions",
	})
)
