package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cgsmiles/pkg/types/common"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthHandler_Liveness(t *testing.T) {
	failing := NewPingChecker("redis", func(context.Context) error { return stderrors.New("down") })
	r := healthRouter(NewHealthHandler("1.2.3", nil, failing))

	w := get(r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code, "liveness ignores dependencies")

	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.HealthUp, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "hc"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	ok := NewPingChecker("redis", func(context.Context) error { return nil })
	bad := NewPingChecker("aux", func(context.Context) error { return stderrors.New("connection refused") })

	t.Run("all up", func(t *testing.T) {
		w := get(healthRouter(NewHealthHandler("v", metrics, ok)), "/readyz")
		assert.Equal(t, http.StatusOK, w.Code)

		var report common.HealthReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, common.HealthUp, report.Status)
		require.Len(t, report.Components, 1)
		assert.Equal(t, "redis", report.Components[0].Name)
	})

	t.Run("one down", func(t *testing.T) {
		w := get(healthRouter(NewHealthHandler("v", metrics, ok, bad)), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var report common.HealthReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, common.HealthDown, report.Status)
		require.Len(t, report.Components, 2)
		assert.Equal(t, "aux", report.Components[0].Name)
		assert.Equal(t, common.HealthDown, report.Components[0].Status)
		assert.Equal(t, "connection refused", report.Components[0].Message)
	})

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `hc_health_check_status{component="aux"} 0`)
	assert.Contains(t, w.Body.String(), `hc_health_check_status{component="redis"} 1`)
}

func TestHealthHandler_ReadinessWithoutCheckers(t *testing.T) {
	w := get(healthRouter(NewHealthHandler("v", nil)), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}
