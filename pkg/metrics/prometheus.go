// Package metrics provides Prometheus metrics for the playmatch recommendation service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric name components.
const (
	namespace = "playmatch"
	subsystem = "recommender"
)

// Latency buckets in milliseconds for in-process calls (HTTP handling,
// repository queries).
var latencyBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // bucket layout

// Oracle latency buckets in milliseconds; the oracle is a remote LLM call.
var oracleBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the recommendation service.
type Manager struct {
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline Metrics - one observation per recommendation request
	recommendations     *prometheus.CounterVec
	candidateCount      prometheus.Gauge
	teamAssignments     prometheus.Counter
	persistenceFailures prometheus.Counter
	rankingPadded       prometheus.Counter

	// Oracle Metrics - the external ranking call
	oracleRequests   *prometheus.CounterVec
	oracleFallbacks  *prometheus.CounterVec
	oracleLatency    prometheus.Histogram
	oracleUnknownIDs prometheus.Counter

	// Repository Metrics
	repositoryQueryLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithPrometheusRegistry(customRegistry),
		WithHistogramBuckets(latencyBuckets),
	)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recommendations = auto.NewCounterVec(
		m.counterOpts("recommendations_total", "Recommendation requests by outcome"),
		[]string{"outcome"},
	)
	m.candidateCount = auto.NewGauge(m.gaugeOpts("candidate_count", "Number of candidate schools in the last request"))
	m.teamAssignments = auto.NewCounter(m.counterOpts("team_assignments_total", "Team assignments written to family records"))
	m.persistenceFailures = auto.NewCounter(m.counterOpts("persistence_failures_total", "Failed team assignment writes"))
	m.rankingPadded = auto.NewCounter(m.counterOpts("ranking_padded_total", "Rankings completed from candidate order after sanitization"))

	m.oracleRequests = auto.NewCounterVec(
		m.counterOpts("oracle_requests_total", "Ranking oracle calls by result"),
		[]string{"result"},
	)
	m.oracleFallbacks = auto.NewCounterVec(
		m.counterOpts("oracle_fallbacks_total", "Rankings that fell back to candidate order, by reason"),
		[]string{"reason"},
	)
	m.oracleLatency = auto.NewHistogram(m.histogramOpts("oracle_latency_milliseconds", "Ranking oracle call latency in milliseconds", oracleBuckets))
	m.oracleUnknownIDs = auto.NewCounter(m.counterOpts("oracle_unknown_ids_total", "School ids proposed by the oracle that are not candidates"))

	m.repositoryQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("repository_query_latency_milliseconds", "Repository call latency in milliseconds", m.histogramBuckets),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of requests that ended in an error", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordRecommendation counts a finished recommendation request.
func RecordRecommendation(outcome string) {
	globalManager.recommendations.WithLabelValues(outcome).Inc()
}

// UpdateCandidateCount sets the candidate count of the latest request.
func UpdateCandidateCount(count int) {
	globalManager.candidateCount.Set(float64(count))
}

// RecordTeamAssignment increments the team assignment counter.
func RecordTeamAssignment() {
	globalManager.teamAssignments.Inc()
}

// RecordPersistenceFailure increments the failed assignment counter.
func RecordPersistenceFailure() {
	globalManager.persistenceFailures.Inc()
}

// RecordRankingPadded increments the padded ranking counter.
func RecordRankingPadded() {
	globalManager.rankingPadded.Inc()
}

// RecordOracleRequest counts an oracle call by result ("ok" or "error").
func RecordOracleRequest(result string) {
	globalManager.oracleRequests.WithLabelValues(result).Inc()
}

// RecordOracleFallback counts a fallback to candidate order.
func RecordOracleFallback(reason string) {
	globalManager.oracleFallbacks.WithLabelValues(reason).Inc()
}

// RecordOracleLatency records oracle latency in milliseconds.
func RecordOracleLatency(latencyMs float64) {
	globalManager.oracleLatency.Observe(latencyMs)
}

// RecordOracleUnknownIDs adds hallucinated school ids.
func RecordOracleUnknownIDs(n int) {
	if n <= 0 {
		return
	}
	globalManager.oracleUnknownIDs.Add(float64(n))
}

// RecordRepositoryQueryLatency records repository latency in milliseconds.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPStatus is a convenience wrapper taking a numeric status.
func RecordHTTPStatus(endpoint, method string, status int, duration float64) {
	code := strconv.Itoa(status)
	RecordHTTPRequest(endpoint, method, code)
	RecordHTTPRequestDuration(endpoint, method, code, duration)
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}
