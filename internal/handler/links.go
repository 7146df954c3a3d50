package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/repository"
)

// legacyFetchCap bounds the flat, unpaginated response shape. Result sets
// larger than this are always served paginated, even when the caller did not
// ask for a page.
const legacyFetchCap = 500

// Paginated-mode defaults and bounds.
const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100
)

// dateLayout is the accepted format for date_from and date_to.
const dateLayout = "2006-01-02"

var (
	errBadSeverity = errors.New("severity must be one of: low, medium, high")
	errBadDateFrom = errors.New("date_from must be formatted as YYYY-MM-DD")
	errBadDateTo   = errors.New("date_to must be formatted as YYYY-MM-DD")
)

// LinkLister reads the link collection with filters.
type LinkLister interface {
	Count(ctx context.Context, filter repository.ListFilter) (int, error)
	List(ctx context.Context, filter repository.ListFilter) ([]domain.Link, error)
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ListFilters echoes back the filter values a paginated request used.
type ListFilters struct {
	Search   string `json:"search"`
	Severity string `json:"severity"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// LinksHandler serves filtered reads over the link collection.
type LinksHandler struct {
	links  LinkLister
	logger logger.Logger
}

// NewLinksHandler creates a LinksHandler backed by the given store.
func NewLinksHandler(links LinkLister, log logger.Logger) *LinksHandler {
	return &LinksHandler{
		links:  links,
		logger: log,
	}
}

// listQuery is the parsed form of the /links query string.
type listQuery struct {
	filter    repository.ListFilter
	echo      ListFilters
	paginated bool // caller supplied page or limit
	page      int
	limit     int
}

// Handle serves GET /links. Callers that supply neither page nor limit get
// the flat legacy shape as long as the matching total stays within
// legacyFetchCap; everything else is paginated.
func (h *LinksHandler) Handle(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			domain.NewErrorResponse(domain.ErrCodeValidation, err.Error()))
		return
	}

	total, err := h.links.Count(c.Request.Context(), q.filter)
	if err != nil {
		h.logger.Error("Failed to count links", logger.Error(err))
		c.JSON(http.StatusInternalServerError,
			internalError("failed to query links", err))
		return
	}

	if !q.paginated && total <= legacyFetchCap {
		h.serveLegacy(c, q)
		return
	}
	h.servePaginated(c, q, total)
}

func (h *LinksHandler) serveLegacy(c *gin.Context, q *listQuery) {
	q.filter.Limit = legacyFetchCap
	q.filter.Offset = 0

	links, err := h.links.List(c.Request.Context(), q.filter)
	if err != nil {
		h.logger.Error("Failed to list links", logger.Error(err))
		c.JSON(http.StatusInternalServerError,
			internalError("failed to query links", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *LinksHandler) servePaginated(c *gin.Context, q *listQuery, total int) {
	q.filter.Limit = q.limit
	q.filter.Offset = (q.page - 1) * q.limit

	links, err := h.links.List(c.Request.Context(), q.filter)
	if err != nil {
		h.logger.Error("Failed to list links", logger.Error(err))
		c.JSON(http.StatusInternalServerError,
			internalError("failed to query links", err))
		return
	}

	totalPages := (total + q.limit - 1) / q.limit

	c.JSON(http.StatusOK, gin.H{
		"links": links,
		"pagination": Pagination{
			Page:       q.page,
			Limit:      q.limit,
			TotalItems: total,
			TotalPages: totalPages,
			HasNext:    q.page < totalPages,
			HasPrev:    q.page > defaultPage,
		},
		"filters": q.echo,
	})
}

func parseListQuery(c *gin.Context) (*listQuery, error) {
	q := &listQuery{
		echo: ListFilters{
			Search:   c.Query("search"),
			Severity: c.Query("severity"),
			DateFrom: c.Query("date_from"),
			DateTo:   c.Query("date_to"),
		},
	}
	q.filter.Search = q.echo.Search

	switch q.echo.Severity {
	case "", repository.SeverityHigh, repository.SeverityMedium, repository.SeverityLow:
		q.filter.Severity = q.echo.Severity
	default:
		return nil, errBadSeverity
	}

	if q.echo.DateFrom != "" {
		day, err := time.ParseInLocation(dateLayout, q.echo.DateFrom, time.Local)
		if err != nil {
			return nil, errBadDateFrom
		}
		q.filter.DateFrom = &day
	}
	if q.echo.DateTo != "" {
		day, err := time.ParseInLocation(dateLayout, q.echo.DateTo, time.Local)
		if err != nil {
			return nil, errBadDateTo
		}
		// Inclusive upper bound: the last representable instant of the day,
		// one microsecond before the next midnight.
		end := day.Add(24*time.Hour - time.Microsecond)
		q.filter.DateTo = &end
	}

	pageStr := c.Query("page")
	limitStr := c.Query("limit")
	q.paginated = pageStr != "" || limitStr != ""

	q.page = defaultPage
	if v, err := strconv.Atoi(pageStr); err == nil {
		q.page = v
	}
	if q.page < defaultPage {
		q.page = defaultPage
	}

	q.limit = defaultLimit
	if v, err := strconv.Atoi(limitStr); err == nil {
		q.limit = v
	}
	if q.limit < 1 {
		q.limit = 1
	}
	if q.limit > maxLimit {
		q.limit = maxLimit
	}

	return q, nil
}
