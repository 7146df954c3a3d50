package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/handler"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/repository"
)

type fakeLister struct {
	total      int
	links      []domain.Link
	countErr   error
	listErr    error
	lastFilter repository.ListFilter
}

func (f *fakeLister) Count(_ context.Context, _ repository.ListFilter) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.total, nil
}

func (f *fakeLister) List(_ context.Context, filter repository.ListFilter) ([]domain.Link, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.links, nil
}

// listResponse covers both response modes; Pagination stays nil when the
// legacy flat shape was served.
type listResponse struct {
	Links      []domain.Link        `json:"links"`
	Pagination *handler.Pagination  `json:"pagination"`
	Filters    *handler.ListFilters `json:"filters"`
}

func newLinksRouter(lister handler.LinkLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewLinksHandler(lister, logger.NewNop())
	router := gin.New()
	router.GET("/links", h.Handle)
	return router
}

func getLinks(t *testing.T, router *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/links"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResponse {
	t.Helper()

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func makeLinks(n int) []domain.Link {
	links := make([]domain.Link, n)
	for i := range links {
		links[i] = domain.Link{
			URL:     fmt.Sprintf("https://example.test/%d", i),
			TweetID: fmt.Sprintf("t%d", i),
		}
	}
	return links
}

func TestLinksHandlerLegacyMode(t *testing.T) {
	lister := &fakeLister{total: 2, links: makeLinks(2)}
	router := newLinksRouter(lister)

	w := getLinks(t, router, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeList(t, w)
	assert.Len(t, resp.Links, 2)
	assert.Nil(t, resp.Pagination)
	assert.Nil(t, resp.Filters)

	assert.Equal(t, 500, lister.lastFilter.Limit)
	assert.Zero(t, lister.lastFilter.Offset)
}

func TestLinksHandlerLegacyThreshold(t *testing.T) {
	t.Run("at threshold stays flat", func(t *testing.T) {
		lister := &fakeLister{total: 500, links: makeLinks(500)}
		router := newLinksRouter(lister)

		resp := decodeList(t, getLinks(t, router, ""))
		assert.Nil(t, resp.Pagination)
		assert.Len(t, resp.Links, 500)
	})

	t.Run("over threshold forces pagination", func(t *testing.T) {
		lister := &fakeLister{total: 501, links: makeLinks(50)}
		router := newLinksRouter(lister)

		resp := decodeList(t, getLinks(t, router, ""))
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, 1, resp.Pagination.Page)
		assert.Equal(t, 50, resp.Pagination.Limit)
		assert.Equal(t, 501, resp.Pagination.TotalItems)
		assert.Equal(t, 11, resp.Pagination.TotalPages)
		assert.True(t, resp.Pagination.HasNext)
		assert.False(t, resp.Pagination.HasPrev)
	})
}

func TestLinksHandlerOmitsInternalID(t *testing.T) {
	lister := &fakeLister{
		total: 1,
		links: []domain.Link{{ID: 99, URL: "https://example.test/a", TweetID: "t1"}},
	}
	router := newLinksRouter(lister)

	w := getLinks(t, router, "")
	require.Equal(t, http.StatusOK, w.Code)

	var raw struct {
		Links []map[string]any `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Links, 1)
	assert.NotContains(t, raw.Links[0], "id")
	assert.Equal(t, "https://example.test/a", raw.Links[0]["url"])
}

func TestLinksHandlerSuppliedLimitForcesPagination(t *testing.T) {
	lister := &fakeLister{total: 2, links: makeLinks(2)}
	router := newLinksRouter(lister)

	resp := decodeList(t, getLinks(t, router, "?limit=10"))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.Equal(t, 1, resp.Pagination.Page)
}

func TestLinksHandlerLastPage(t *testing.T) {
	lister := &fakeLister{total: 120, links: makeLinks(20)}
	router := newLinksRouter(lister)

	w := getLinks(t, router, "?page=3&limit=50")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeList(t, w)
	assert.Len(t, resp.Links, 20)

	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Equal(t, 50, resp.Pagination.Limit)
	assert.Equal(t, 120, resp.Pagination.TotalItems)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)

	assert.Equal(t, 100, lister.lastFilter.Offset)
	assert.Equal(t, 50, lister.lastFilter.Limit)
}

func TestLinksHandlerParamClamping(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{
			name:       "negative page floors to one",
			query:      "?page=-5&limit=50",
			wantPage:   1,
			wantLimit:  50,
			wantOffset: 0,
		},
		{
			name:       "oversized limit clamps",
			query:      "?page=2&limit=1000",
			wantPage:   2,
			wantLimit:  100,
			wantOffset: 100,
		},
		{
			name:       "zero limit clamps to one",
			query:      "?limit=0",
			wantPage:   1,
			wantLimit:  1,
			wantOffset: 0,
		},
		{
			name:       "unparseable values fall back to defaults",
			query:      "?page=abc&limit=xyz",
			wantPage:   1,
			wantLimit:  50,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{total: 1000, links: makeLinks(1)}
			router := newLinksRouter(lister)

			resp := decodeList(t, getLinks(t, router, tt.query))
			require.NotNil(t, resp.Pagination)
			assert.Equal(t, tt.wantPage, resp.Pagination.Page)
			assert.Equal(t, tt.wantLimit, resp.Pagination.Limit)
			assert.Equal(t, tt.wantOffset, lister.lastFilter.Offset)
		})
	}
}

func TestLinksHandlerFilterValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "unknown severity", query: "?severity=extreme"},
		{name: "bad date_from", query: "?date_from=2026-13-40"},
		{name: "bad date_to", query: "?date_to=notadate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLinksRouter(&fakeLister{})

			w := getLinks(t, router, tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, domain.ErrCodeValidation, decodeErrorCode(t, w))
		})
	}
}

func TestLinksHandlerFilterParsing(t *testing.T) {
	lister := &fakeLister{total: 1, links: makeLinks(1)}
	router := newLinksRouter(lister)

	w := getLinks(t, router,
		"?search=evil&severity=high&date_from=2026-01-10&date_to=2026-01-12&limit=5")

	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "evil", lister.lastFilter.Search)
	assert.Equal(t, repository.SeverityHigh, lister.lastFilter.Severity)

	require.NotNil(t, lister.lastFilter.DateFrom)
	assert.Equal(t,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local),
		*lister.lastFilter.DateFrom,
	)
	require.NotNil(t, lister.lastFilter.DateTo)
	assert.Equal(t,
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.Local).Add(24*time.Hour-time.Microsecond),
		*lister.lastFilter.DateTo,
	)

	resp := decodeList(t, w)
	require.NotNil(t, resp.Filters)
	assert.Equal(t, "evil", resp.Filters.Search)
	assert.Equal(t, "high", resp.Filters.Severity)
	assert.Equal(t, "2026-01-10", resp.Filters.DateFrom)
	assert.Equal(t, "2026-01-12", resp.Filters.DateTo)
}

func TestLinksHandlerStorageErrors(t *testing.T) {
	t.Run("count failure", func(t *testing.T) {
		router := newLinksRouter(&fakeLister{countErr: errors.New("connection refused")})

		w := getLinks(t, router, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, domain.ErrCodeInternal, decodeErrorCode(t, w))
	})

	t.Run("list failure", func(t *testing.T) {
		router := newLinksRouter(&fakeLister{total: 3, listErr: errors.New("connection refused")})

		w := getLinks(t, router, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, domain.ErrCodeInternal, decodeErrorCode(t, w))
	})
}
