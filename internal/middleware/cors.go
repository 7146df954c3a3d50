package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowedMethods = "GET, POST, OPTIONS"
	corsAllowedHeaders = "Content-Type, Authorization, X-Request-ID"
	corsMaxAge         = "3600"
)

// CORS answers cross-origin requests for the configured origins. An empty
// origin list allows any origin, which fits the service's trusted-network
// deployments; lock it down with CORS_ORIGINS otherwise.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := allowedOrigin(origin, allowedOrigins)
		if allowed == "" {
			// Origin not allowed: continue without CORS headers.
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", allowed)
		c.Writer.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
		c.Writer.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		c.Writer.Header().Set("Access-Control-Max-Age", corsMaxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// allowedOrigin returns the origin value for the response header, or empty
// when the request origin is not allowed.
func allowedOrigin(origin string, allowedOrigins []string) string {
	// No Origin header means same-origin or non-browser client.
	if origin == "" {
		return "*"
	}
	if len(allowedOrigins) == 0 {
		return "*"
	}
	for _, allowed := range allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}
