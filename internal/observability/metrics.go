package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	statusUpdatesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "dashboard",
		Name:      "status_updates_total",
		Help:      "Number of activity status updates grouped by outcome.",
	}, []string{"outcome"})

	dashboardCacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "dashboard",
		Name:      "cache_lookups_total",
		Help:      "Dashboard cache lookups grouped by result.",
	}, []string{"result"})

	planSeedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "plan",
		Name:      "seeds_total",
		Help:      "Monthly plans seeded, grouped by seed source.",
	}, []string{"source"})

	planReplaceCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "plan",
		Name:      "replacements_total",
		Help:      "Monthly plans replaced by an explicit user edit.",
	})

	activityTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "activity",
		Name:      "transitions_total",
		Help:      "Activity lifecycle transitions grouped by kind.",
	}, []string{"transition"})

	bufferedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habits",
		Subsystem: "buffer",
		Name:      "operations_total",
		Help:      "Writes routed to the local buffer grouped by entity.",
	}, []string{"entity"})

	bufferSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habits",
		Subsystem: "buffer",
		Name:      "items",
		Help:      "Number of writes waiting in the local buffer.",
	})
)

func init() {
	prometheus.MustRegister(
		statusUpdatesCounter,
		dashboardCacheCounter,
		planSeedCounter,
		planReplaceCounter,
		activityTransitionCounter,
		bufferedCounter,
		bufferSizeGauge,
	)
}

// Seed sources.
const (
	SeedPreviousMonth = "previous_month"
	SeedActive        = "active_activities"
)

// RecordStatusUpdate counts a status update; outcome is "stored" or "buffered".
func RecordStatusUpdate(outcome string) {
	statusUpdatesCounter.WithLabelValues(outcome).Inc()
}

func RecordDashboardCache(hit bool) {
	if hit {
		dashboardCacheCounter.WithLabelValues("hit").Inc()
		return
	}
	dashboardCacheCounter.WithLabelValues("miss").Inc()
}

func RecordPlanSeeded(source string) {
	planSeedCounter.WithLabelValues(source).Inc()
}

func RecordPlanReplaced() {
	planReplaceCounter.Inc()
}

func RecordActivityTransition(transition string) {
	activityTransitionCounter.WithLabelValues(transition).Inc()
}

func RecordBuffered(entity string) {
	bufferedCounter.WithLabelValues(entity).Inc()
}

// SetBufferSize updates the buffered items gauge.
func SetBufferSize(size int) {
	bufferSizeGauge.Set(float64(size))
}
