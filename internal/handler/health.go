package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles liveness checks.
type HealthHandler struct {
	service string
	version string
}

// NewHealthHandler creates a HealthHandler reporting the given identity.
func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
	}
}

// Handle returns service health status.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}
