package prometheus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	require.NotNil(t, m)
	return m, c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	assert.NotNil(t, m.ResolutionsTotal)
	assert.NotNil(t, m.ResolutionDuration)
	assert.NotNil(t, m.ResolutionAtoms)
	assert.NotNil(t, m.ResolutionMetaNodes)
	assert.NotNil(t, m.UnconsumedDescriptorsTotal)
	assert.NotNil(t, m.TemplateCacheHitsTotal)
	assert.NotNil(t, m.TemplateCacheMissesTotal)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordResolution(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordResolution(m, 2*time.Millisecond, 17, 3, 2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_resolutions_total{operation="resolve",status="success"} 1`)
	assert.Contains(t, out, `test_unit_resolution_duration_seconds_count{operation="resolve"} 1`)
	assert.Contains(t, out, `test_unit_resolution_atoms_sum 17`)
	assert.Contains(t, out, `test_unit_resolution_meta_nodes_sum 3`)
	assert.Contains(t, out, `test_unit_unconsumed_descriptors_total 2`)
}

func TestRecordOperationFailure(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordOperationFailure(m, "resolve", "CGS_001", time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_resolutions_total{operation="resolve",status="failure"} 1`)
	assert.Contains(t, out, `test_unit_errors_total{component="resolve",error_type="CGS_001"} 1`)
}

func TestRecordValidation(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordValidation(m, time.Millisecond)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_resolutions_total{operation="validate",status="success"} 1`)
}

func TestRecordTemplateCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordTemplateCacheAccess(m, true)
	RecordTemplateCacheAccess(m, true)
	RecordTemplateCacheAccess(m, false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_template_cache_hits_total 2`)
	assert.Contains(t, out, `test_unit_template_cache_misses_total 1`)
}

func TestRecordHTTPRequest_AllMetricsUpdated(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/resolve", 200, 100*time.Millisecond, 1024, 2048)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/resolve",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_http_request_size_bytes_sum{method="POST",path="/api/v1/resolve"} 1024`)
	assert.Contains(t, out, `test_unit_http_response_size_bytes_sum{method="POST",path="/api/v1/resolve"} 2048`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/resolve"} 1`)
}

func TestRecordHTTPRequest_UnknownSizesSkipped(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/healthz", 200, time.Millisecond, -1, 12)

	out := scrapeMetrics(t, c)
	assert.NotContains(t, out, `test_unit_http_request_size_bytes_count{method="GET"`)
	assert.Contains(t, out, `test_unit_http_response_size_bytes_sum{method="GET",path="/healthz"} 12`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "redis", true)
	RecordCacheAccess(m, "redis", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="redis"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="redis"} 1`)
}

func TestSetHealth(t *testing.T) {
	m, c := newTestAppMetrics(t)

	SetHealth(m, "redis", false)
	SetHealth(m, "resolver", true)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_health_check_status{component="redis"} 0`)
	assert.Contains(t, out, `test_unit_health_check_status{component="resolver"} 1`)
}

func TestHelpers_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordResolution(nil, time.Second, 1, 1, 1)
		RecordOperationFailure(nil, "resolve", "x", time.Second)
		RecordValidation(nil, time.Second)
		RecordTemplateCacheAccess(nil, true)
		RecordHTTPRequest(nil, "GET", "/", 200, time.Second, 1, 1)
		RecordCacheAccess(nil, "redis", true)
		SetHealth(nil, "a", true)
	})
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, c := newTestAppMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordTemplateCacheAccess(m, true)
			}
		}()
	}
	wg.Wait()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_template_cache_hits_total 1000`)
}
