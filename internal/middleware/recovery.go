package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/logger"
)

// Recovery catches handler panics, logs them, and answers with the
// standard error envelope instead of tearing the connection down.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logger.Any("error", err),
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
					logger.String("client_ip", c.ClientIP()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					domain.NewErrorResponse(domain.ErrCodeInternal, "internal server error"))
			}
		}()

		c.Next()
	}
}
