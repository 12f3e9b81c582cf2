package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cgsmiles/pkg/types/common"
)

// HealthChecker is an interface for components that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type pingChecker struct {
	name string
	ping func(ctx context.Context) error
}

func (p pingChecker) Name() string                    { return p.name }
func (p pingChecker) Check(ctx context.Context) error { return p.ping(ctx) }

// NewPingChecker adapts a Ping method into a HealthChecker.
func NewPingChecker(name string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker{name: name, ping: ping}
}

// HealthHandler handles health check HTTP requests.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
	metrics  *prometheus.AppMetrics
}

// NewHealthHandler creates a new HealthHandler. metrics may be nil.
func NewHealthHandler(version string, metrics *prometheus.AppMetrics, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
		metrics:  metrics,
	}
}

// RegisterRoutes registers the probe endpoints on r.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// LivenessResponse is the response for liveness probe.
type LivenessResponse struct {
	Status  common.HealthStatus `json:"status"`
	Version string              `json:"version"`
	Uptime  string              `json:"uptime"`
}

// Liveness handles GET /healthz. It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  common.HealthUp,
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz. Any failing checker yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	report := common.HealthReport{Status: common.HealthUp, Components: h.checkAll(ctx)}
	for _, comp := range report.Components {
		if comp.Status != common.HealthUp {
			report.Status = common.HealthDown
			break
		}
	}

	code := http.StatusOK
	if report.Status != common.HealthUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

// checkAll runs all health checkers concurrently, sorted by name.
func (h *HealthHandler) checkAll(ctx context.Context) []common.ComponentHealth {
	results := make([]common.ComponentHealth, len(h.checkers))
	var wg sync.WaitGroup

	for i, checker := range h.checkers {
		wg.Add(1)
		go func(i int, ch HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := ch.Check(ctx)
			comp := common.ComponentHealth{
				Name:    ch.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start),
			}
			if err != nil {
				comp.Status = common.HealthDown
				comp.Message = err.Error()
			}
			prometheus.SetHealth(h.metrics, comp.Name, err == nil)
			results[i] = comp
		}(i, checker)
	}

	wg.Wait()
	sort.Slice(results, func(a, b int) bool { return results[a].Name < results[b].Name })
	return results
}
