package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts scheduler and execution outcomes for the operator endpoint.
type Metrics struct {
	OrdersPlaced prometheus.Counter
	TicksSkipped *prometheus.CounterVec
	VenueErrors  prometheus.Counter
}

// NewMetrics registers the engine counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_orders_placed_total",
			Help: "Number of entry orders successfully placed.",
		}),
		TicksSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_ticks_skipped_total",
			Help: "Number of scheduler ticks skipped, by reason.",
		}, []string{"reason"}),
		VenueErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bot_venue_errors_total",
			Help: "Number of venue or transport errors observed.",
		}),
	}
}
