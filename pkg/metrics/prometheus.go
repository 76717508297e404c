package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for growthlens.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Data source
	apiRequests      *prometheus.CounterVec
	apiRetries       *prometheus.CounterVec
	apiLatency       *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	listingHandles   prometheus.Counter
	usersCollected   *prometheus.CounterVec
	snapshotsBuilt   prometheus.Counter
	collectionErrors *prometheus.CounterVec

	// Worker pool
	queueSize     prometheus.Gauge
	activeWorkers prometheus.Gauge

	// Analysis
	analysisDuration prometheus.Histogram
	groupSnapshots   *prometheus.GaugeVec
	snapshotsLoaded  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "growthlens",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
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

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(
		m.counterOpts("api_requests_total", "Codeforces API requests by method and outcome"),
		[]string{"method", "outcome"},
	)
	m.apiRetries = auto.NewCounterVec(
		m.counterOpts("api_retries_total", "Codeforces API retry attempts by method"),
		[]string{"method"},
	)
	m.apiLatency = auto.NewHistogramVec(
		m.histogramOpts("api_request_duration_seconds", "Codeforces API request duration in seconds"),
		[]string{"method"},
	)
	m.cacheLookups = auto.NewCounterVec(
		m.counterOpts("cache_lookups_total", "Raw response cache lookups by result"),
		[]string{"result"},
	)
	m.listingHandles = auto.NewCounter(
		m.counterOpts("listing_handles_total", "Handles parsed from rated-user listing pages"),
	)
	m.usersCollected = auto.NewCounterVec(
		m.counterOpts("users_collected_total", "Users processed by the collector by outcome"),
		[]string{"outcome"},
	)
	m.snapshotsBuilt = auto.NewCounter(
		m.counterOpts("snapshots_built_total", "Snapshots built from rating histories"),
	)
	m.collectionErrors = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Handles waiting in the collection queue"))
	m.activeWorkers = auto.NewGauge(m.gaugeOpts("workers_active", "Collection workers currently processing a handle"))

	m.analysisDuration = auto.NewHistogram(
		m.histogramOpts("analysis_duration_seconds", "Duration of a full analysis run in seconds"),
	)
	m.groupSnapshots = auto.NewGaugeVec(
		m.gaugeOpts("group_snapshots", "Snapshots assigned to each rating group in the last analysis"),
		[]string{"group"},
	)
	m.snapshotsLoaded = auto.NewGauge(
		m.gaugeOpts("snapshots_loaded", "Snapshots read by the last analysis"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_seconds", "HTTP request duration in seconds"),
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordAPIRequest counts one API request and observes its duration.
func (m *Manager) RecordAPIRequest(method, outcome string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.apiRequests.WithLabelValues(method, outcome).Inc()
	m.apiLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordAPIRetry counts one retry of an API method.
func (m *Manager) RecordAPIRetry(method string) {
	if !m.enabled {
		return
	}
	m.apiRetries.WithLabelValues(method).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Manager) RecordCacheLookup(hit bool) {
	if !m.enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordListingHandles counts handles parsed from listing pages.
func (m *Manager) RecordListingHandles(n int) {
	if !m.enabled {
		return
	}
	m.listingHandles.Add(float64(n))
}

// RecordUserCollected counts a processed user.
func (m *Manager) RecordUserCollected(outcome string) {
	if !m.enabled {
		return
	}
	m.usersCollected.WithLabelValues(outcome).Inc()
}

// RecordSnapshotsBuilt adds to the built snapshot counter.
func (m *Manager) RecordSnapshotsBuilt(n int) {
	if !m.enabled {
		return
	}
	m.snapshotsBuilt.Add(float64(n))
}

// RecordError counts an error by component and type.
func (m *Manager) RecordError(component, errorType string) {
	if !m.enabled {
		return
	}
	m.collectionErrors.WithLabelValues(component, errorType).Inc()
}

// UpdateQueueSize sets the current queue depth.
func (m *Manager) UpdateQueueSize(size int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
}

// AddActiveWorkers adjusts the active worker gauge by delta.
func (m *Manager) AddActiveWorkers(delta int) {
	if !m.enabled {
		return
	}
	m.activeWorkers.Add(float64(delta))
}

// RecordAnalysis observes an analysis run.
func (m *Manager) RecordAnalysis(d time.Duration, loaded int, perGroup map[string]int) {
	if !m.enabled {
		return
	}
	m.analysisDuration.Observe(d.Seconds())
	m.snapshotsLoaded.Set(float64(loaded))
	for group, n := range perGroup {
		m.groupSnapshots.WithLabelValues(group).Set(float64(n))
	}
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(d.Seconds())
}

// Package-level helpers delegate to the global manager.

// RecordAPIRequest counts one API request on the global manager.
func RecordAPIRequest(method, outcome string, d time.Duration) {
	globalManager.RecordAPIRequest(method, outcome, d)
}

// RecordAPIRetry counts one API retry on the global manager.
func RecordAPIRetry(method string) { globalManager.RecordAPIRetry(method) }

// RecordCacheLookup counts a cache hit or miss on the global manager.
func RecordCacheLookup(hit bool) { globalManager.RecordCacheLookup(hit) }

// RecordListingHandles counts parsed listing handles on the global manager.
func RecordListingHandles(n int) { globalManager.RecordListingHandles(n) }

// RecordUserCollected counts a processed user on the global manager.
func RecordUserCollected(outcome string) { globalManager.RecordUserCollected(outcome) }

// RecordSnapshotsBuilt counts built snapshots on the global manager.
func RecordSnapshotsBuilt(n int) { globalManager.RecordSnapshotsBuilt(n) }

// RecordError counts an error on the global manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// UpdateQueueSize sets the queue depth on the global manager.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// AddActiveWorkers adjusts the active worker gauge on the global manager.
func AddActiveWorkers(delta int) { globalManager.AddActiveWorkers(delta) }

// RecordAnalysis observes an analysis run on the global manager.
func RecordAnalysis(d time.Duration, loaded int, perGroup map[string]int) {
	globalManager.RecordAnalysis(d, loaded, perGroup)
}

// RecordHTTPRequest counts an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler exposes the custom registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Families returns the number of metric families currently exported.
func Families() (int, error) {
	mfs, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	return len(mfs), nil
}
