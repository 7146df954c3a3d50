// Package handler implements the HTTP endpoints for link-tracker.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/extract"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/middleware"
	"github.com/blix057/afdver-Bot/internal/telemetry"
	"github.com/blix057/afdver-Bot/internal/usage"
)

// LinkMerger folds one extracted URL into the link collection.
type LinkMerger interface {
	Merge(ctx context.Context, url string, sub *domain.Submission, identity string, now time.Time) (domain.MergeOutcome, error)
}

// IngestHandler accepts authenticated bot submissions, extracts their URLs,
// and merges each into the collection.
type IngestHandler struct {
	links  LinkMerger
	usage  *usage.Recorder
	tel    *telemetry.Provider
	logger logger.Logger
}

// NewIngestHandler creates an IngestHandler with the given dependencies.
func NewIngestHandler(
	links LinkMerger,
	rec *usage.Recorder,
	tel *telemetry.Provider,
	log logger.Logger,
) *IngestHandler {
	return &IngestHandler{
		links:  links,
		usage:  rec,
		tel:    tel,
		logger: log,
	}
}

// Handle processes one submission. The identity was placed in the context by
// the auth middleware; validation happens before any storage access. A
// submission whose text contains no URLs is still a success, with zero
// inserted and updated.
func (h *IngestHandler) Handle(c *gin.Context) {
	identity := c.GetString(middleware.IdentityKey)

	var sub domain.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest,
			domain.NewErrorResponse(domain.ErrCodeValidation, "invalid request body"))
		return
	}
	if sub.TweetText == "" || sub.TweetID == "" {
		c.JSON(http.StatusBadRequest,
			domain.NewErrorResponse(domain.ErrCodeValidation, "tweet_text and tweet_id are required"))
		return
	}

	urls := extract.URLs(sub.TweetText)
	h.tel.RecordExtraction(len(urls))

	ctx, span := h.tel.StartSpan(c.Request.Context(), "ingest.merge",
		attribute.String("identity", identity),
		attribute.Int("url_count", len(urls)),
	)
	defer span.End()

	result := domain.IngestResult{
		ProcessedURLs: urls,
		Identity:      identity,
	}
	if result.ProcessedURLs == nil {
		result.ProcessedURLs = []string{}
	}

	now := time.Now()
	for _, url := range urls {
		outcome, err := h.mergeOne(ctx, url, &sub, identity, now)
		if err != nil {
			h.logger.Error("Failed to merge link",
				logger.String("url", url),
				logger.String("identity", identity),
				logger.Error(err),
			)
			c.JSON(http.StatusInternalServerError,
				internalError("failed to store links", err))
			return
		}
		switch outcome {
		case domain.MergeInserted:
			result.Inserted++
		case domain.MergeUpdated:
			result.Updated++
		case domain.MergeNoop:
		}
	}

	if !h.usage.Record(identity) {
		h.logger.Warn("Usage buffer full, dropping event",
			logger.String("identity", identity),
		)
	}

	h.logger.Info("Submission processed",
		logger.String("identity", identity),
		logger.Int("urls", len(urls)),
		logger.Int("inserted", result.Inserted),
		logger.Int("updated", result.Updated),
	)

	c.JSON(http.StatusOK, result)
}

// mergeOne merges a single URL, timing it for the outcome metric.
func (h *IngestHandler) mergeOne(
	ctx context.Context,
	url string,
	sub *domain.Submission,
	identity string,
	now time.Time,
) (domain.MergeOutcome, error) {
	start := time.Now()
	outcome, err := h.links.Merge(ctx, url, sub, identity, now)
	if err != nil {
		return outcome, err
	}
	h.tel.RecordMergeOutcome(outcome.String(), time.Since(start))
	return outcome, nil
}
