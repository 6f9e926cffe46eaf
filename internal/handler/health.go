package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/middleware"
	"github.com/pydigger/pydigger/internal/server"
)

// Pinger checks one dependency.
type Pinger func(ctx context.Context) error

type dependency struct {
	ping Pinger

	// critical dependencies turn the whole status unhealthy. The catalog
	// still serves pages without Redis, so Redis is not critical.
	critical bool
}

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
	dependencies map[string]dependency
}

// NewHealthHandler pings MongoDB and, when configured, Redis.
func NewHealthHandler(s *server.Server) *HealthHandler {
	deps := map[string]dependency{
		"database": {ping: s.DB.Ping, critical: true},
	}
	if s.Redis != nil {
		deps["redis"] = dependency{ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}}
	}

	return &HealthHandler{
		Handler:      NewHandler(s),
		dependencies: deps,
	}
}

// CheckHealth returns 200 when every critical dependency answers, 503
// otherwise. Only the checks listed in the config are run.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !cfg.Enabled {
		return c.JSON(http.StatusOK, response)
	}

	isHealthy := true
	for _, name := range cfg.Checks {
		dep, ok := h.dependencies[name]
		if !ok {
			checks[name] = map[string]interface{}{"status": "disabled"}
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		checkStart := time.Now()
		err := dep.ping(ctx)
		cancel()

		if err != nil {
			checks[name] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": time.Since(checkStart).String(),
				"error":         err.Error(),
			}
			if dep.critical {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			h.recordHealthCheckError(name, err, time.Since(checkStart))
			continue
		}

		checks[name] = map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordHealthCheckError(check string, err error, took time.Duration) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": took.Milliseconds(),
		"error_message":    err.Error(),
	})
}
