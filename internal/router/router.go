// Package router builds the Echo instance: it installs the middleware
// chain, the renderer and the global error handler, and maps every route
// to its handler.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/handler"
	"github.com/pydigger/pydigger/internal/middleware"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/pydigger/pydigger/internal/server"
)

// NewRouter wires middlewares, renderer and routes.
//
// Middleware order matters: the request id must exist before the New Relic
// transaction gets its attributes and before the request-scoped logger is
// built, and the request logger must see the final error.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	renderer, err := render.New(s.Config.Catalog.SiteName)
	if err != nil {
		return nil, err
	}

	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Renderer = renderer
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Metrics.Observe(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)
	registerCatalogRoutes(router, h)

	api := router.Group("/api", middlewares.RateLimit.Limit())
	api.GET("/0/recent", handler.Handle(h.API.Recent, http.StatusOK))

	return router, nil
}

func registerCatalogRoutes(r *echo.Echo, h *handler.Handlers) {
	list := handler.HandlePage(h.Catalog.List)
	r.GET("/", list)
	r.GET("/search", list)
	r.GET("/search/:word", list)
	r.GET("/keyword/:keyword", list)
	r.GET("/author/:name", list)

	r.GET("/pypi/:name", handler.HandlePage(h.Catalog.Detail))

	r.GET("/keywords", handler.HandlePage(h.Aggregate.Keywords))
	r.GET("/licenses", handler.HandlePage(h.Aggregate.Licenses))
	r.GET("/stats", handler.HandlePage(h.Aggregate.Stats))

	r.GET("/about", handler.HandlePage(h.Static.About))
	r.GET("/robots.txt", handler.HandleText(h.Static.Robots, http.StatusOK))
}
