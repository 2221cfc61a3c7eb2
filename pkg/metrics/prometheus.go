// Package metrics provides Prometheus metrics for the plate changes service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for batch outcomes.
const (
	ResultOK        = "ok"
	ResultViolation = "violation"
	ModeClean       = "clean"
	ModeForced      = "forced"
)

// Manager manages all Prometheus metrics for the plate changes service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Core business metrics
	validations       *prometheus.CounterVec
	violations        prometheus.Counter
	validationLatency prometheus.Histogram
	invalidInputs     prometheus.Counter
	batchesApplied    *prometheus.CounterVec
	batchesHeld       prometheus.Counter
	duplicates        prometheus.Counter
	levelsAdjusted    prometheus.Counter

	// Building model state
	levelCount           prometheus.Gauge
	adjustableLevelCount prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "platechanges",
		subsystem:        "levels",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.validations = auto.NewCounterVec(
		m.counterOpts("validations_total", "Total number of batches validated by result"),
		[]string{"result"},
	)
	m.violations = auto.NewCounter(m.counterOpts("violations_total", "Total number of inverted level pairs detected"))
	m.validationLatency = auto.NewHistogram(m.histogramOpts(
		"validation_latency_milliseconds", "Batch validation latency in milliseconds",
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	))
	m.invalidInputs = auto.NewCounter(m.counterOpts("invalid_inputs_total", "Total number of submissions rejected as invalid input"))
	m.batchesApplied = auto.NewCounterVec(
		m.counterOpts("batches_applied_total", "Total number of batches written back by mode"),
		[]string{"mode"},
	)
	m.batchesHeld = auto.NewCounter(m.counterOpts("batches_held_total", "Total number of batches held back for confirmation because of violations"))
	m.duplicates = auto.NewCounter(m.counterOpts("submissions_duplicate_total", "Total number of repeated submissions ignored"))
	m.levelsAdjusted = auto.NewCounter(m.counterOpts("levels_adjusted_total", "Total number of level elevations changed"))

	m.levelCount = auto.NewGauge(m.gaugeOpts("model_levels", "Number of levels in the building model"))
	m.adjustableLevelCount = auto.NewGauge(m.gaugeOpts("adjustable_levels", "Number of levels offered for adjustment"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts(
		"repository_update_latency_milliseconds", "Repository write-back latency in milliseconds", m.histogramBuckets,
	))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts(
		"repository_query_latency_milliseconds", "Repository query latency in milliseconds", m.histogramBuckets,
	))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordValidation records one batch verdict, its violation count and latency.
func RecordValidation(ok bool, violations int, latencyMs float64) {
	result := ResultOK
	if !ok {
		result = ResultViolation
	}
	globalManager.validations.WithLabelValues(result).Inc()
	globalManager.violations.Add(float64(violations))
	globalManager.validationLatency.Observe(latencyMs)
}

// RecordInvalidInput increments the invalid submission counter.
func RecordInvalidInput() {
	globalManager.invalidInputs.Inc()
}

// RecordBatchApplied records a written-back batch and the levels it changed.
func RecordBatchApplied(forced bool, adjusted int) {
	mode := ModeClean
	if forced {
		mode = ModeForced
	}
	globalManager.batchesApplied.WithLabelValues(mode).Inc()
	globalManager.levelsAdjusted.Add(float64(adjusted))
}

// RecordBatchHeld increments the counter of batches awaiting confirmation.
func RecordBatchHeld() {
	globalManager.batchesHeld.Inc()
}

// RecordDuplicateSubmission increments the duplicate submission counter.
func RecordDuplicateSubmission() {
	globalManager.duplicates.Inc()
}

// UpdateLevelCount sets the number of levels in the building model.
func UpdateLevelCount(count int) {
	globalManager.levelCount.Set(float64(count))
}

// UpdateAdjustableLevelCount sets the number of adjustable levels.
func UpdateAdjustableLevelCount(count int) {
	globalManager.adjustableLevelCount.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryUpdateLatency records write-back latency in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records query latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the error counter for an error type.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
