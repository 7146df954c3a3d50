package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/ratelimit"
	"github.com/blix057/afdver-Bot/internal/telemetry"
)

// RateLimit enforces the per-identity admission quota. It must run after
// BotAuth: unauthenticated requests are rejected before they reach the
// limiter, so they never consume quota. A failing limiter store rejects
// the request rather than silently admitting it.
func RateLimit(limiter *ratelimit.Limiter, tel *telemetry.Provider, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetString(IdentityKey)
		if id == "" {
			log.Error("Rate limit reached without an authenticated identity",
				logger.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				domain.NewErrorResponse(domain.ErrCodeInternal, "internal server error"))
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), id)
		if err != nil {
			log.Error("Rate limit check failed",
				logger.String("identity", id),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				domain.NewErrorResponse(domain.ErrCodeInternal, "internal server error"))
			return
		}

		if !allowed {
			tel.RecordRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				domain.NewErrorResponse(domain.ErrCodeRateLimited, "submission quota exhausted, retry later"))
			return
		}

		c.Next()
	}
}
