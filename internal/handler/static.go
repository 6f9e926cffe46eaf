package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/pydigger/pydigger/internal/server"
)

// RobotsTxt is served at /robots.txt.
const RobotsTxt = "Disallow: /static/*\n"

// StaticHandler serves the pages that do not touch the catalog.
type StaticHandler struct {
	Handler
}

func NewStaticHandler(s *server.Server) *StaticHandler {
	return &StaticHandler{
		Handler: NewHandler(s),
	}
}

func (h *StaticHandler) About(c echo.Context, _ *EmptyRequest) (*render.Page, error) {
	return &render.Page{
		Template: render.TemplateAbout,
		Title:    "About " + h.server.Config.Catalog.SiteName,
	}, nil
}

func (h *StaticHandler) Robots(c echo.Context, _ *EmptyRequest) (string, error) {
	return RobotsTxt, nil
}
