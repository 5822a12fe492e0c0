// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Streak update outcomes.
const (
	StreakExtended  = "extended"
	StreakStarted   = "started"
	StreakUnchanged = "unchanged"
	StreakReset     = "reset"
	StreakSkipped   = "skipped"
)

// Summary cache request results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Prometheus metrics for the plant tracker.
var (
	// Counters.
	PlantsLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_plants_logged_total",
			Help: "Total number of plant consumptions logged",
		},
		[]string{"first_time"},
	)

	PointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plantquest_points_awarded_total",
			Help: "Total number of points awarded across all users",
		},
	)

	BadgesUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_badges_unlocked_total",
			Help: "Total number of badges unlocked",
		},
		[]string{"badge_name"},
	)

	StreakUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_streak_updates_total",
			Help: "Streak updates by outcome",
		},
		[]string{"outcome"},
	)

	LogFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_log_failures_total",
			Help: "Log requests that did not commit, by reason",
		},
		[]string{"reason"},
	)

	SummaryCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_summary_cache_requests_total",
			Help: "Summary cache lookups by result",
		},
		[]string{"result"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantquest_notifications_sent_total",
			Help: "Badge unlock notifications by status",
		},
		[]string{"status"},
	)

	// Gauges.
	ActiveBadgeHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plantquest_active_badge_holders",
			Help: "Current number of users holding each badge",
		},
		[]string{"badge_name"},
	)

	// Histograms.
	LogDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plantquest_log_duration_seconds",
			Help:    "Time taken to record a plant log, transaction included",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

// RecordPlantLogged records a committed log and the points it awarded.
func RecordPlantLogged(firstTime bool, points int) {
	PlantsLoggedTotal.WithLabelValues(strconv.FormatBool(firstTime)).Inc()
	if points > 0 {
		PointsAwardedTotal.Add(float64(points))
	}
}

// RecordBadgeUnlocked records a badge unlock event.
func RecordBadgeUnlocked(badgeName string) {
	BadgesUnlockedTotal.WithLabelValues(badgeName).Inc()
}

// SetActiveBadgeHolders sets the number of holders for a badge.
func SetActiveBadgeHolders(badgeName string, count int) {
	ActiveBadgeHolders.WithLabelValues(badgeName).Set(float64(count))
}

// RecordStreakUpdate records the outcome of a streak update.
func RecordStreakUpdate(outcome string) {
	StreakUpdatesTotal.WithLabelValues(outcome).Inc()
}

// RecordLogFailure records a log request that rolled back.
func RecordLogFailure(reason string) {
	LogFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordSummaryCache records a summary cache lookup result.
func RecordSummaryCache(result string) {
	SummaryCacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordNotification records a notification delivery attempt.
func RecordNotification(status string) {
	NotificationsSentTotal.WithLabelValues(status).Inc()
}

// ObserveLogDuration observes the duration of a log request.
func ObserveLogDuration(seconds float64) {
	LogDurationSeconds.Observe(seconds)
}
