package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/logger"
)

// StatsReader aggregates the link collection.
type StatsReader interface {
	Stats(ctx context.Context, dayStart time.Time) (*domain.Stats, error)
}

// StatsHandler serves the collection summary.
type StatsHandler struct {
	links  StatsReader
	logger logger.Logger
}

// NewStatsHandler creates a StatsHandler backed by the given store.
func NewStatsHandler(links StatsReader, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		links:  links,
		logger: log,
	}
}

// Handle serves GET /stats. The links_today boundary is midnight of the
// current day in the process's local timezone.
func (h *StatsHandler) Handle(c *gin.Context) {
	stats, err := h.links.Stats(c.Request.Context(), startOfDay(time.Now()))
	if err != nil {
		h.logger.Error("Failed to compute stats", logger.Error(err))
		c.JSON(http.StatusInternalServerError,
			internalError("failed to compute stats", err))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// startOfDay returns local midnight of the day containing t.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
