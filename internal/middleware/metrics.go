package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tweeter/backend/pkg/metrics"
)

// Metrics records Prometheus request metrics for every handled request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method

		// FullPath is the route template, which keeps label
		// cardinality bounded; unmatched routes fall back to the raw
		// path.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		latency := time.Since(start)
		metrics.HTTPRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
	}
}
