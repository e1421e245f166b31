package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("stats"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"league": "42"}),
				WithPrometheusRegistry(registry),
			)
			m.recordsDropped.WithLabelValues("no_identity").Add(2)

			Convey("Then collectors carry the namespace and const labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_stats_records_dropped_total" {
						found = true
						labels := f.GetMetric()[0].GetLabel()
						names := make([]string, 0, len(labels))
						for _, l := range labels {
							names = append(names, l.GetName()+"="+l.GetValue())
						}
						So(strings.Join(names, ","), ShouldContainSubstring, "league=42")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline activity", func() {
			before := testutil.ToFloat64(globalManager.recordsDropped.WithLabelValues("duplicate"))
			RecordDropped("duplicate", 3)
			RecordDropped("duplicate", 0)
			RecordNormalized("01", 10)
			RecordSourceRequest("stats", "ok", 12)
			RecordSourceFallback("stats")
			UpdateBreakerState("sleeper", 2)
			RecordCatalogCache("hit")
			UpdateFetchQueueSize(4)
			RecordFetchJob("ok", 30)
			UpdateWorkerActive(2)
			RecordSnapshotWrite("usage", "ok", 2048)
			UpdateDatasetRows("usage", 120)
			RecordRun("build", "ok", 900)
			MarkRunCompleted(1700000000)
			RecordHTTPRequest("snapshots", "GET", "200", 3)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.recordsDropped.WithLabelValues("duplicate")), ShouldEqual, before+3)
				So(testutil.ToFloat64(globalManager.breakerState.WithLabelValues("sleeper")), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.datasetRows.WithLabelValues("usage")), ShouldEqual, 120)
				So(testutil.ToFloat64(globalManager.fetchQueueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.lastRunUnix), ShouldEqual, 1700000000)
			})
		})

		Convey("Then the registry gathers without error", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
