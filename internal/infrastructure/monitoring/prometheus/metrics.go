package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family recorded by the resolver service.
type AppMetrics struct {
	// Resolution
	ResolutionsTotal           CounterVec
	ResolutionDuration         HistogramVec
	ResolutionAtoms            HistogramVec
	ResolutionMetaNodes        HistogramVec
	UnconsumedDescriptorsTotal CounterVec

	// Fragment templates
	TemplateCacheHitsTotal   CounterVec
	TemplateCacheMissesTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Result cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultResolutionDurationBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .5, 1}
	DefaultAtomCountBuckets          = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 100000}
	DefaultNodeCountBuckets          = []float64{1, 2, 5, 10, 50, 100, 1000, 10000}
	DefaultSizeBuckets               = []float64{100, 1000, 10000, 100000, 1000000}
)

// Resolution status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// NewAppMetrics registers all metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// Resolution
	m.ResolutionsTotal = collector.RegisterCounter("resolutions_total", "Notation resolutions by outcome", "operation", "status")
	m.ResolutionDuration = collector.RegisterHistogram("resolution_duration_seconds", "Notation resolution duration", DefaultResolutionDurationBuckets, "operation")
	m.ResolutionAtoms = collector.RegisterHistogram("resolution_atoms", "Atoms in resolved molecules", DefaultAtomCountBuckets)
	m.ResolutionMetaNodes = collector.RegisterHistogram("resolution_meta_nodes", "Fragment instances in resolved molecules", DefaultNodeCountBuckets)
	m.UnconsumedDescriptorsTotal = collector.RegisterCounter("unconsumed_descriptors_total", "Bonding descriptors left unconsumed after resolution")

	// Fragment templates
	m.TemplateCacheHitsTotal = collector.RegisterCounter("template_cache_hits_total", "Fragment template cache hits")
	m.TemplateCacheMissesTotal = collector.RegisterCounter("template_cache_misses_total", "Fragment template cache misses")

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Result cache
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers. All of them accept a nil *AppMetrics.

// RecordResolution records one successful resolution.
func RecordResolution(metrics *AppMetrics, duration time.Duration, atoms, metaNodes, unconsumed int) {
	if metrics == nil {
		return
	}
	metrics.ResolutionsTotal.WithLabelValues("resolve", StatusSuccess).Inc()
	metrics.ResolutionDuration.WithLabelValues("resolve").Observe(duration.Seconds())
	metrics.ResolutionAtoms.WithLabelValues().Observe(float64(atoms))
	metrics.ResolutionMetaNodes.WithLabelValues().Observe(float64(metaNodes))
	if unconsumed > 0 {
		metrics.UnconsumedDescriptorsTotal.WithLabelValues().Add(float64(unconsumed))
	}
}

// RecordOperationFailure records a failed resolve or validate call under errorType.
func RecordOperationFailure(metrics *AppMetrics, operation, errorType string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.ResolutionsTotal.WithLabelValues(operation, StatusFailure).Inc()
	metrics.ResolutionDuration.WithLabelValues(operation).Observe(duration.Seconds())
	metrics.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordValidation records one successful validate-only call.
func RecordValidation(metrics *AppMetrics, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.ResolutionsTotal.WithLabelValues("validate", StatusSuccess).Inc()
	metrics.ResolutionDuration.WithLabelValues("validate").Observe(duration.Seconds())
}

func RecordTemplateCacheAccess(metrics *AppMetrics, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.TemplateCacheHitsTotal.WithLabelValues().Inc()
	} else {
		metrics.TemplateCacheMissesTotal.WithLabelValues().Inc()
	}
}

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	if metrics == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if reqSize >= 0 {
		metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	}
	if respSize >= 0 {
		metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// SetHealth sets the health gauge of component to 1 when up, 0 otherwise.
func SetHealth(metrics *AppMetrics, component string, up bool) {
	if metrics == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}
