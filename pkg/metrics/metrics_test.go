package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom buckets and registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)
			manager.repositoryQueryLatency.WithLabelValues("family").Observe(7)

			Convey("Then metrics are registered under the service namespace with those buckets", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var bounds []float64
				for _, mf := range families {
					if mf.GetName() == "playmatch_recommender_repository_query_latency_milliseconds" {
						for _, b := range mf.GetMetric()[0].GetHistogram().GetBucket() {
							bounds = append(bounds, b.GetUpperBound())
						}
					}
				}
				So(bounds, ShouldResemble, []float64{1, 10, 100})
			})
		})

		Convey("When passing empty values", func() {
			manager := NewManager(
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})

		Convey("When using the global manager", func() {
			Convey("Then latency histograms use millisecond buckets", func() {
				So(Global().histogramBuckets, ShouldResemble, latencyBuckets)
				So(latencyBuckets[len(latencyBuckets)-1], ShouldBeGreaterThanOrEqualTo, 1000)
			})
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		m := Global()

		Convey("When recording recommendation outcomes", func() {
			before := testutil.ToFloat64(m.recommendations.WithLabelValues("assigned"))
			RecordRecommendation("assigned")
			RecordRecommendation("assigned")

			Convey("Then the outcome counter grows", func() {
				So(testutil.ToFloat64(m.recommendations.WithLabelValues("assigned")), ShouldEqual, before+2)
			})
		})

		Convey("When recording oracle activity", func() {
			fallbacks := testutil.ToFloat64(m.oracleFallbacks.WithLabelValues("malformed"))
			unknown := testutil.ToFloat64(m.oracleUnknownIDs)

			RecordOracleRequest("ok")
			RecordOracleLatency(320)
			RecordOracleFallback("malformed")
			RecordOracleUnknownIDs(2)
			RecordOracleUnknownIDs(0)
			RecordOracleUnknownIDs(-1)

			Convey("Then fallbacks and unknown ids are counted", func() {
				So(testutil.ToFloat64(m.oracleFallbacks.WithLabelValues("malformed")), ShouldEqual, fallbacks+1)
				So(testutil.ToFloat64(m.oracleUnknownIDs), ShouldEqual, unknown+2)
			})
		})

		Convey("When recording persistence", func() {
			assignments := testutil.ToFloat64(m.teamAssignments)
			failures := testutil.ToFloat64(m.persistenceFailures)
			RecordTeamAssignment()
			RecordPersistenceFailure()
			RecordRankingPadded()
			UpdateCandidateCount(7)

			Convey("Then the counters and gauge move", func() {
				So(testutil.ToFloat64(m.teamAssignments), ShouldEqual, assignments+1)
				So(testutil.ToFloat64(m.persistenceFailures), ShouldEqual, failures+1)
				So(testutil.ToFloat64(m.candidateCount), ShouldEqual, 7)
			})
		})
	})
}

func TestOperationalMetrics(t *testing.T) {
	Convey("Given operational recorders", t, func() {
		Convey("Then none of them panic", func() {
			So(func() {
				RecordRepositoryQueryLatency("family", 1.5)
				RecordHTTPRequest("recommend", "POST", "200")
				RecordHTTPRequestDuration("recommend", "POST", "200", 12)
				RecordHTTPStatus("recommend", "POST", 404, 3)
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByType("not_found", "medium")
				RecordErrorByEndpoint("recommend", "POST", "not_found")
				RecordErrorLatency("http", "not_found", 3)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("And the registry exposes them", func() {
			RecordHTTPStatus("recommend", "POST", 200, 1)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "playmatch_recommender_http_requests_total")
		})
	})
}
