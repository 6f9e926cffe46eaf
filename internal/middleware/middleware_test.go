package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pydigger/pydigger/internal/config"
	"github.com/pydigger/pydigger/internal/errs"
	"github.com/pydigger/pydigger/internal/metrics"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/storeerr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
		},
		Logger:  &logger,
		Metrics: metrics.New(),
	}
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "http error passes through", err: errs.NewBadRequestError("bad", true, nil, nil), wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "wrapped http error", err: errors.Wrap(errs.NewTooManyRequestsError("slow down"), "limiter"), wantStatus: http.StatusTooManyRequests, wantCode: "TOO_MANY_REQUESTS"},
		{name: "unknown route", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "method not allowed", err: echo.ErrMethodNotAllowed, wantStatus: http.StatusMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED"},
		{name: "missing document", err: storeerr.Wrap(mongo.ErrNoDocuments, "packages"), wantStatus: http.StatusNotFound, wantCode: "PACKAGE_NOT_FOUND"},
		{name: "store timeout", err: storeerr.Wrap(context.DeadlineExceeded, "packages"), wantStatus: http.StatusServiceUnavailable, wantCode: "SERVICE_UNAVAILABLE"},
		{name: "anything else", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := ResolveError(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestGlobalErrorHandler_API(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/0/recent", nil), rec)

	global.GlobalErrorHandler(errors.New("secret driver message"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error","status":500,"override":false}`, rec.Body.String())
}

func TestGlobalErrorHandler_WithoutRenderer(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/pypi/x", nil), rec)

	global.GlobalErrorHandler(errs.NewNotFoundError("x not found", true, nil), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "x not found", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	}, RequestID())

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestEnhanceContext_StoresLogger(t *testing.T) {
	s := newTestServer()
	ce := NewContextEnhancer(s)

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		assert.NotNil(t, c.Get(LoggerKey))
		assert.NotNil(t, zerolog.Ctx(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	}, RequestID(), ce.EnhanceContext())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLogger_Fallback(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	require.NotNil(t, GetLogger(c))
}

func TestMetricsMiddleware(t *testing.T) {
	s := newTestServer()
	mw := NewMetricsMiddleware(s)

	e := echo.New()
	e.GET("/pypi/:name", func(c echo.Context) error {
		if c.Param("name") == "missing" {
			return errs.NewNotFoundError("missing not found", true, nil)
		}
		return c.NoContent(http.StatusOK)
	}, mw.Observe())

	for _, target := range []string{"/pypi/a", "/pypi/b", "/pypi/missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics.RequestsTotal.WithLabelValues("GET", "/pypi/:name", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RequestsTotal.WithLabelValues("GET", "/pypi/:name", "404")))
}

func TestRateLimit(t *testing.T) {
	t.Run("disabled passes through", func(t *testing.T) {
		s := newTestServer()
		limit := NewRateLimitMiddleware(s).Limit()

		called := 0
		h := limit(func(c echo.Context) error {
			called++
			return nil
		})

		e := echo.New()
		for i := 0; i < 5; i++ {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/0/recent", nil), httptest.NewRecorder())
			require.NoError(t, h(c))
		}
		assert.Equal(t, 5, called)
	})

	t.Run("burst exhausted", func(t *testing.T) {
		s := newTestServer()
		s.Config.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}
		limit := NewRateLimitMiddleware(s).Limit()

		h := limit(func(c echo.Context) error { return nil })

		e := echo.New()
		var last error
		for i := 0; i < 3; i++ {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/0/recent", nil), httptest.NewRecorder())
			last = h(c)
			if i < 2 {
				require.NoError(t, last)
			}
		}

		var httpErr *errs.HTTPError
		require.True(t, errors.As(last, &httpErr))
		assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	})
}
