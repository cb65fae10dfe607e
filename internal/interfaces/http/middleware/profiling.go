package middleware

import (
	"context"
	"strings"

	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips probes and the swagger UI.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/ready"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// ProfilingWithConfig runs the rest of the chain under a Pyroscope label
// naming the operation, e.g. "POST /api/v1/orders/:id/approve", so CPU and
// allocation profiles can be split per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		route := c.FullPath()
		if route == "" || hasAnyPrefix(path, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), operationLabel(c.Request.Method, route), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// operationLabel strips the API prefix: "GET /api/v1/stock/branch" -> "GET stock/branch".
func operationLabel(method, route string) string {
	trimmed := strings.TrimPrefix(route, "/")
	if rest, ok := strings.CutPrefix(trimmed, "api/"); ok {
		if i := strings.IndexByte(rest, '/'); i >= 0 && strings.HasPrefix(rest, "v") {
			trimmed = rest[i+1:]
		}
	}
	return method + " " + trimmed
}
