package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	fallbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habitflow",
		Subsystem: "persistence",
		Name:      "remote_fallback_total",
		Help:      "Remote persistence failures recovered by the local store, by operation.",
	}, []string{"operation"})
	snapshotCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habitflow",
		Subsystem: "persistence",
		Name:      "subscription_snapshot_total",
		Help:      "Full-collection snapshots delivered to live subscribers.",
	})
	habitGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habitflow",
		Subsystem: "store",
		Name:      "habits",
		Help:      "Habits currently held by the record store.",
	})
	toggleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habitflow",
		Subsystem: "store",
		Name:      "completion_toggles_total",
		Help:      "Completion markers flipped on or off.",
	})
)

func init() {
	prometheus.MustRegister(fallbackCounter, snapshotCounter, habitGauge, toggleCounter)
}

// RecordFallback counts one remote failure recovered locally.
func RecordFallback(operation string) {
	fallbackCounter.WithLabelValues(operation).Inc()
}

// RecordSnapshot counts one whole-collection subscription delivery.
func RecordSnapshot() {
	snapshotCounter.Inc()
}

// SetHabitCount updates the store size gauge.
func SetHabitCount(n int) {
	habitGauge.Set(float64(n))
}

// RecordToggle counts one completion toggle.
func RecordToggle() {
	toggleCounter.Inc()
}
