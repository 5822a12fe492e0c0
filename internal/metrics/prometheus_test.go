package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPlantLogged(t *testing.T) {
	PlantsLoggedTotal.Reset()
	before := testutil.ToFloat64(PointsAwardedTotal)

	RecordPlantLogged(true, 5)
	RecordPlantLogged(false, 1)
	RecordPlantLogged(false, 1)

	if got := testutil.ToFloat64(PlantsLoggedTotal.WithLabelValues("true")); got != 1 {
		t.Errorf("Expected first-time count = 1, got %f", got)
	}
	if got := testutil.ToFloat64(PlantsLoggedTotal.WithLabelValues("false")); got != 2 {
		t.Errorf("Expected repeat count = 2, got %f", got)
	}
	if got := testutil.ToFloat64(PointsAwardedTotal) - before; got != 7 {
		t.Errorf("Expected 7 points awarded, got %f", got)
	}
}

func TestRecordPlantLogged_ZeroPoints(t *testing.T) {
	before := testutil.ToFloat64(PointsAwardedTotal)

	RecordPlantLogged(false, 0)

	if got := testutil.ToFloat64(PointsAwardedTotal); got != before {
		t.Errorf("Expected points counter unchanged, got %f want %f", got, before)
	}
}

func TestRecordBadgeUnlocked(t *testing.T) {
	BadgesUnlockedTotal.Reset()

	RecordBadgeUnlocked("Seedling")
	RecordBadgeUnlocked("Seedling")
	RecordBadgeUnlocked("Sprout")

	if got := testutil.ToFloat64(BadgesUnlockedTotal.WithLabelValues("Seedling")); got != 2 {
		t.Errorf("Expected Seedling count = 2, got %f", got)
	}
	if got := testutil.ToFloat64(BadgesUnlockedTotal.WithLabelValues("Sprout")); got != 1 {
		t.Errorf("Expected Sprout count = 1, got %f", got)
	}
}

func TestSetActiveBadgeHolders(t *testing.T) {
	SetActiveBadgeHolders("Seedling", 4)
	SetActiveBadgeHolders("Seedling", 6)

	if got := testutil.ToFloat64(ActiveBadgeHolders.WithLabelValues("Seedling")); got != 6 {
		t.Errorf("Expected gauge = 6, got %f", got)
	}
}

func TestRecordStreakUpdate(t *testing.T) {
	StreakUpdatesTotal.Reset()

	RecordStreakUpdate(StreakExtended)
	RecordStreakUpdate(StreakSkipped)
	RecordStreakUpdate(StreakSkipped)

	if got := testutil.ToFloat64(StreakUpdatesTotal.WithLabelValues(StreakExtended)); got != 1 {
		t.Errorf("Expected extended = 1, got %f", got)
	}
	if got := testutil.ToFloat64(StreakUpdatesTotal.WithLabelValues(StreakSkipped)); got != 2 {
		t.Errorf("Expected skipped = 2, got %f", got)
	}
}

func TestRecordSummaryCache(t *testing.T) {
	SummaryCacheRequestsTotal.Reset()

	RecordSummaryCache(CacheHit)
	RecordSummaryCache(CacheMiss)
	RecordSummaryCache(CacheMiss)

	if got := testutil.ToFloat64(SummaryCacheRequestsTotal.WithLabelValues(CacheMiss)); got != 2 {
		t.Errorf("Expected miss = 2, got %f", got)
	}
}

func TestRecordLogFailureAndNotification(t *testing.T) {
	LogFailuresTotal.Reset()
	NotificationsSentTotal.Reset()

	RecordLogFailure("plant_not_found")
	RecordNotification("failed")

	if got := testutil.ToFloat64(LogFailuresTotal.WithLabelValues("plant_not_found")); got != 1 {
		t.Errorf("Expected plant_not_found = 1, got %f", got)
	}
	if got := testutil.ToFloat64(NotificationsSentTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("Expected failed = 1, got %f", got)
	}
}

func TestObserveLogDuration(t *testing.T) {
	ObserveLogDuration(0.002)
	ObserveLogDuration(0.5)

	if count := testutil.CollectAndCount(LogDurationSeconds); count != 1 {
		t.Errorf("Expected 1 histogram metric, got %d", count)
	}
}

func TestMetricsRegistered(t *testing.T) {
	collectors := []prometheus.Collector{
		PlantsLoggedTotal,
		PointsAwardedTotal,
		BadgesUnlockedTotal,
		StreakUpdatesTotal,
		LogFailuresTotal,
		SummaryCacheRequestsTotal,
		NotificationsSentTotal,
		ActiveBadgeHolders,
		LogDurationSeconds,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err == nil {
			t.Errorf("Expected collector to be registered already")
		}
	}
}
