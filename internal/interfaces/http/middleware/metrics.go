package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/prometheus"
)

// unmatchedPath labels requests that hit no route, keeping label cardinality
// bounded.
const unmatchedPath = "unmatched"

// Metrics records request counts, latency, sizes and in-flight requests.
// The path label is the route template, not the raw URL.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		method := c.Request.Method
		active := metrics.HTTPActiveRequests.WithLabelValues(method)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		prometheus.RecordHTTPRequest(metrics, method, path, c.Writer.Status(),
			time.Since(start), c.Request.ContentLength, int64(c.Writer.Size()))
	}
}
