// Package metrics provides Prometheus metrics for the gridiron stats pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the pipeline exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Normalization
	recordsNormalized *prometheus.CounterVec
	recordsDropped    *prometheus.CounterVec

	// Upstream provider
	sourceRequests  *prometheus.CounterVec
	sourceLatency   *prometheus.HistogramVec
	sourceFallbacks *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec

	// Catalog cache
	catalogCache *prometheus.CounterVec

	// Fetch queue and workers
	fetchQueueSize  prometheus.Gauge
	fetchJobs       *prometheus.CounterVec
	workerActive    prometheus.Gauge
	workerJobMillis prometheus.Histogram

	// Snapshots
	snapshotWrites *prometheus.CounterVec
	snapshotBytes  *prometheus.HistogramVec
	datasetRows    *prometheus.GaugeVec

	// Pipeline runs
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	lastRunUnix      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridiron",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsNormalized = m.counterVec("records_normalized_total",
		"Raw stat rows turned into canonical records", "week")
	m.recordsDropped = m.counterVec("records_dropped_total",
		"Raw stat rows dropped during normalization", "reason")

	m.sourceRequests = m.counterVec("source_requests_total",
		"Requests to the sports-data provider by endpoint and outcome", "endpoint", "outcome")
	m.sourceLatency = m.histogramVec("source_request_duration_milliseconds",
		"Provider request latency in milliseconds", m.histogramBuckets, "endpoint")
	m.sourceFallbacks = m.counterVec("source_fallbacks_total",
		"Provider calls that failed and were replaced by an empty default", "endpoint")
	m.breakerState = m.gaugeVec("source_breaker_state",
		"Circuit breaker state (0 closed, 1 half-open, 2 open)", "breaker")

	m.catalogCache = m.counterVec("catalog_cache_total",
		"Player catalog cache lookups by result", "result")

	m.fetchQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_queue_size",
		Help:        "Week fetch jobs waiting in the queue",
		ConstLabels: m.constLabels,
	})
	m.fetchJobs = m.counterVec("fetch_jobs_total",
		"Week fetch jobs processed by outcome", "outcome")
	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_workers_active",
		Help:        "Fetch workers currently running",
		ConstLabels: m.constLabels,
	})
	m.workerJobMillis = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_job_duration_milliseconds",
		Help:        "Time spent fetching and normalizing one week",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.snapshotWrites = m.counterVec("snapshot_writes_total",
		"Snapshot documents written by dataset and outcome", "dataset", "outcome")
	m.snapshotBytes = m.histogramVec("snapshot_size_bytes",
		"Encoded snapshot size in bytes",
		prometheus.ExponentialBuckets(512, 4, 8), "dataset")
	m.datasetRows = m.gaugeVec("dataset_rows",
		"Rows in the most recently written snapshot per dataset", "dataset")

	m.pipelineRuns = m.counterVec("runs_total",
		"Pipeline stage executions by stage and status", "stage", "status")
	m.pipelineDuration = m.histogramVec("run_duration_milliseconds",
		"Pipeline stage duration in milliseconds", m.histogramBuckets, "stage")
	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time of the last successful full run",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
}

// RecordNormalized counts canonical records produced for a week.
func RecordNormalized(week string, n int) {
	globalManager.recordsNormalized.WithLabelValues(week).Add(float64(n))
}

// RecordDropped counts raw rows discarded for reason.
func RecordDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.recordsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordSourceRequest records one provider request.
func RecordSourceRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.sourceRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.sourceLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordSourceFallback counts a provider failure replaced by an empty default.
func RecordSourceFallback(endpoint string) {
	globalManager.sourceFallbacks.WithLabelValues(endpoint).Inc()
}

// UpdateBreakerState publishes a breaker state (0 closed, 1 half-open, 2 open).
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCatalogCache counts a catalog cache lookup result: hit, miss, stale, error.
func RecordCatalogCache(result string) {
	globalManager.catalogCache.WithLabelValues(result).Inc()
}

// UpdateFetchQueueSize sets the number of queued week fetch jobs.
func UpdateFetchQueueSize(size int) {
	globalManager.fetchQueueSize.Set(float64(size))
}

// RecordFetchJob records a processed week fetch job.
func RecordFetchJob(outcome string, latencyMs float64) {
	globalManager.fetchJobs.WithLabelValues(outcome).Inc()
	globalManager.workerJobMillis.Observe(latencyMs)
}

// UpdateWorkerActive sets the number of running fetch workers.
func UpdateWorkerActive(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordSnapshotWrite records a snapshot write for a dataset.
func RecordSnapshotWrite(dataset, outcome string, size int) {
	globalManager.snapshotWrites.WithLabelValues(dataset, outcome).Inc()
	if size > 0 {
		globalManager.snapshotBytes.WithLabelValues(dataset).Observe(float64(size))
	}
}

// UpdateDatasetRows sets the row count of the latest snapshot for dataset.
func UpdateDatasetRows(dataset string, rows int) {
	globalManager.datasetRows.WithLabelValues(dataset).Set(float64(rows))
}

// RecordRun records a pipeline stage execution.
func RecordRun(stage, status string, durationMs float64) {
	globalManager.pipelineRuns.WithLabelValues(stage, status).Inc()
	globalManager.pipelineDuration.WithLabelValues(stage).Observe(durationMs)
}

// MarkRunCompleted stamps the last successful full run.
func MarkRunCompleted(unix int64) {
	globalManager.lastRunUnix.Set(float64(unix))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the registry backing the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
