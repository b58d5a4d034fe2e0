package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given a manager built with custom options", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(
			WithNamespace("test_namespace"),
			WithSubsystem("test_subsystem"),
			WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			WithMetricsEnabled(false),
			WithRefreshInterval(5*time.Second),
			WithCustomLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then the options should be applied", func() {
			So(manager.namespace, ShouldEqual, "test_namespace")
			So(manager.subsystem, ShouldEqual, "test_subsystem")
			So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			So(manager.Enabled(), ShouldBeFalse)
			So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
			So(manager.customLabels, ShouldResemble, map[string]string{"env": "test"})
		})

		Convey("And metrics should be registered on the supplied registry", func() {
			manager.scoresRecorded.Inc()
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "test_namespace_test_subsystem_scores_recorded_total")
		})
	})

	Convey("Given options with empty values", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(
			WithNamespace(""),
			WithSubsystem(""),
			WithHistogramBuckets(nil),
			WithRefreshInterval(0),
			WithPrometheusRegistry(registry),
		)

		Convey("Then the defaults should be kept", func() {
			So(manager.namespace, ShouldEqual, "tilescores")
			So(manager.subsystem, ShouldEqual, "leaderboard")
			So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a score is recorded", func() {
			before := testutil.ToFloat64(globalManager.scoresRecorded)
			RecordScoreRecorded(42.5)

			Convey("Then the counter should advance by one", func() {
				So(testutil.ToFloat64(globalManager.scoresRecorded), ShouldEqual, before+1)
			})
		})

		Convey("When a ranked read is recorded", func() {
			before := testutil.ToFloat64(globalManager.topScoreQueries)
			RecordTopScoresQuery()

			Convey("Then the counter should advance by one", func() {
				So(testutil.ToFloat64(globalManager.topScoreQueries), ShouldEqual, before+1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateTotalScores(12)
			UpdateBestTime(9.5)
			UpdateSystemGoroutineCount(7)
			UpdateSystemMemoryUsage(2048)

			Convey("Then they should hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.totalScores), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.bestTimeSeconds), ShouldEqual, 9.5)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 2048)
			})
		})

		Convey("When labelled counters are recorded", func() {
			RecordHTTPRequest("add_score", "POST", "200")
			RecordErrorByComponent("repository", "write")
			RecordErrorByType("server_error", "high")
			RecordErrorByEndpoint("add_score", "POST", "server_error")

			Convey("Then each labelled series should exist", func() {
				So(testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("add_score", "POST", "200")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.errorRateByComponent.WithLabelValues("repository", "write")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.errorRateByType.WithLabelValues("server_error", "high")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.errorRateByEndpoint.WithLabelValues("add_score", "POST", "server_error")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When histograms are observed", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					RecordRepositoryUpdateLatency(1.5)
					RecordRepositoryQueryLatency(0.5)
					RecordRepositoryLockWait(0.01)
					RecordHTTPRequestDuration("get_top_scores", "POST", "200", 3)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry should be gatherable", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
