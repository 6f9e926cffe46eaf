package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/pydigger/pydigger/internal/errs"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/storeerr"
	"github.com/rs/zerolog"
)

// APIPrefix marks the routes whose errors are answered in JSON.
const APIPrefix = "/api/"

// GlobalMiddlewares groups "global" middleware and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware configured from the server config.
// Only the JSON API is meant to be called cross-origin.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead},
	})
}

// RequestLogger logs one line per request with a level derived from the
// final status.
//
// When a handler returns an error the response has not been written yet,
// so the status is resolved from the error the same way the global error
// handler will.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			if v.Error != nil {
				statusCode = ResolveError(v.Error).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("HTTP")

			return nil
		},
	})
}

// Recover turns handler panics into errors for the global error handler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure adds the standard security headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// ResolveError maps any error returned by a handler to the HTTPError that
// will be sent to the client.
//
//   - *errs.HTTPError: as is
//   - echo 404 (unknown route): "Page not found"
//   - other echo errors: their status, generic text
//   - anything else goes through storeerr (driver errors, unknown = 500)
func ResolveError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Page not found", true, nil)
		}

		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
		return &errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
			Message: message,
			Status:  echoErr.Code,
		}
	}

	if errors.As(storeerr.HandleError(err), &httpErr) {
		return httpErr
	}

	return errs.NewInternalServerError()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// The original error is logged; the client gets a sanitized response:
// JSON for the API, an HTML page (404 page or generic error page) for
// everything else. Messages are only shown when the error allows it.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := ResolveError(err)

	logger := GetLogger(c)
	event := logger.Warn()
	if httpErr.Status >= 500 {
		event = logger.Error().Stack()
	}
	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	message := httpErr.Message
	if !httpErr.Override {
		message = http.StatusText(httpErr.Status)
	}

	if strings.HasPrefix(c.Request().URL.Path, APIPrefix) {
		_ = c.JSON(httpErr.Status, errs.HTTPError{
			Code:     httpErr.Code,
			Message:  message,
			Status:   httpErr.Status,
			Override: httpErr.Override,
			Errors:   httpErr.Errors,
		})
		return
	}

	page := &render.Page{
		Template: render.TemplateError,
		Title:    http.StatusText(httpErr.Status),
		Status:   httpErr.Status,
		Data:     message,
	}
	if httpErr.Status == http.StatusNotFound {
		page.Template = render.TemplateNotFound
		page.Title = message
		page.Data = nil
	}

	if c.Echo().Renderer != nil {
		renderErr := c.Render(httpErr.Status, string(page.Template), page)
		if renderErr == nil {
			return
		}
		logger.Error().Err(renderErr).Msg("failed to render error page")
	}

	_ = c.String(httpErr.Status, message)
}
