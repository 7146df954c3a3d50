package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blix057/afdver-Bot/internal/handler"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewHealthHandler("link-tracker", "0.1.0")
	router := gin.New()
	router.GET("/health", h.Handle)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "link-tracker", resp["service"])
	assert.Equal(t, "0.1.0", resp["version"])
}
