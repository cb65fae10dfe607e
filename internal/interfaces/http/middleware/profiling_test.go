package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOperationLabel(t *testing.T) {
	tests := []struct {
		method, route, want string
	}{
		{"GET", "/api/v1/stock/branch", "GET stock/branch"},
		{"POST", "/api/v1/orders/:id/approve", "POST orders/:id/approve"},
		{"GET", "/api/v2/sales", "GET sales"},
		{"GET", "/health", "GET health"},
		{"GET", "/api/products", "GET api/products"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationLabel(tt.method, tt.route))
	}
}

func TestProfilingWithConfig_RunsHandlers(t *testing.T) {
	calls := 0
	router := gin.New()
	router.Use(ProfilingWithConfig(DefaultProfilingConfig()))
	handler := func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	}
	router.GET("/health", handler)
	router.GET("/api/v1/orders/:id", handler)

	for _, path := range []string{"/health", "/api/v1/orders/42", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, 2, calls)
}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
