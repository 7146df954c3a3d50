// Package api wires the HTTP routes to their handlers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/handler"
	"github.com/blix057/afdver-Bot/internal/identity"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/middleware"
	"github.com/blix057/afdver-Bot/internal/ratelimit"
	"github.com/blix057/afdver-Bot/internal/telemetry"
)

// Deps carries everything route registration needs.
type Deps struct {
	Ingest      *handler.IngestHandler
	Links       *handler.LinksHandler
	Stats       *handler.StatsHandler
	Register    *handler.RegisterHandler
	Health      *handler.HealthHandler
	Registry    *identity.Registry
	Limiter     *ratelimit.Limiter
	AdminSecret string
	Telemetry   *telemetry.Provider
	Logger      logger.Logger
}

// SetupRoutes configures all API routes. The write path runs behind bot
// authentication and the admission limiter, in that order, so rejected
// credentials never consume quota.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed,
			domain.NewErrorResponse(domain.ErrCodeMethodNotAllowed, "method not allowed"))
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound,
			domain.NewErrorResponse(domain.ErrCodeNotFound, "route not found"))
	})

	router.POST("/ingest",
		middleware.BotAuth(deps.Registry),
		middleware.RateLimit(deps.Limiter, deps.Telemetry, deps.Logger),
		deps.Ingest.Handle,
	)

	router.GET("/links", deps.Links.Handle)
	router.GET("/stats", deps.Stats.Handle)

	router.POST("/register",
		middleware.AdminAuth(deps.AdminSecret),
		deps.Register.Handle,
	)

	router.GET("/health", deps.Health.Handle)
	router.GET("/metrics", gin.WrapH(deps.Telemetry.Handler()))
}
