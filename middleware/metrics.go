package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"folio/metrics"
)

// Metrics records request counts and latency by route template, so
// /api/contact/messages/:id is one series regardless of id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
