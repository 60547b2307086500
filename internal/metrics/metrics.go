package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Seating holds the collectors describing auto-assign runs and violations
type Seating struct {
	AutoAssignRuns prometheus.Counter
	GuestsPlaced   prometheus.Counter
	GuestsUnplaced prometheus.Gauge
	Violations     prometheus.Gauge
	SeatChanges    *prometheus.CounterVec
}

// NewSeating creates the collectors and registers them with reg
func NewSeating(reg prometheus.Registerer) *Seating {
	m := &Seating{
		AutoAssignRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "auto_assign_runs_total",
			Help:      "Number of auto-assign runs.",
		}),
		GuestsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "guests_placed_total",
			Help:      "Guests placed by auto-assign plans.",
		}),
		GuestsUnplaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seating",
			Name:      "guests_unplaced",
			Help:      "Attending guests the last auto-assign run could not seat.",
		}),
		Violations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seating",
			Name:      "constraint_violations",
			Help:      "Constraint violations found by the last scan.",
		}),
		SeatChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seating",
			Name:      "seat_changes_total",
			Help:      "Manual seat changes by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.AutoAssignRuns, m.GuestsPlaced, m.GuestsUnplaced, m.Violations, m.SeatChanges)
	return m
}

// ObserveRun records the outcome of one auto-assign run
func (m *Seating) ObserveRun(placed, unplaced int) {
	m.AutoAssignRuns.Inc()
	m.GuestsPlaced.Add(float64(placed))
	m.GuestsUnplaced.Set(float64(unplaced))
}
