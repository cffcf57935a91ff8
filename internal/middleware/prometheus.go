package middleware

import (
	"time"

	"moviecatalog/internal/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMetrics records request count, latency and in-flight requests.
// Routes are labeled by their pattern so ids and slugs do not explode the
// label set.
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		c.Next()

		metrics.RecordAPIRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
