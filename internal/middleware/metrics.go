package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/server"
)

// MetricsMiddleware records Prometheus request counters and latencies.
type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

// Observe labels requests by route template (c.Path()), never by raw URL,
// so package names do not explode the label cardinality.
func (m *MetricsMiddleware) Observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = ResolveError(err).Status
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.server.Metrics.ObserveRequest(c.Request().Method, route, status, start)

			return err
		}
	}
}
