package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/telemetry"
)

// Metrics observes request latency per route template. Unmatched requests
// are bucketed under a single label to keep metric cardinality bounded.
func Metrics(tel *telemetry.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		tel.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
