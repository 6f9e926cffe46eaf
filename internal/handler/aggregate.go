package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/service"
)

// AggregateHandler serves the pages computed over the whole catalog:
// keywords, licenses and statistics.
type AggregateHandler struct {
	Handler
	packages *service.PackageService
	stats    *service.StatsService
}

func NewAggregateHandler(s *server.Server, packages *service.PackageService, stats *service.StatsService) *AggregateHandler {
	return &AggregateHandler{
		Handler:  NewHandler(s),
		packages: packages,
		stats:    stats,
	}
}

// KeywordsView is the data of templates/keywords.html.
type KeywordsView struct {
	Keywords *model.KeywordStats
	Stats    *model.Stats
}

func (h *AggregateHandler) Keywords(c echo.Context, _ *EmptyRequest) (*render.Page, error) {
	ctx := c.Request().Context()

	keywords, err := h.packages.Keywords(ctx)
	if err != nil {
		return nil, err
	}

	return &render.Page{
		Template: render.TemplateKeywords,
		Title:    "Keywords of Python packages on PyPI",
		Data: &KeywordsView{
			Keywords: keywords,
			Stats:    h.stats.Get(ctx),
		},
	}, nil
}

func (h *AggregateHandler) Licenses(c echo.Context, _ *EmptyRequest) (*render.Page, error) {
	breakdown, err := h.packages.Licenses(c.Request().Context())
	if err != nil {
		return nil, err
	}

	return &render.Page{
		Template: render.TemplateLicenses,
		Title:    "Licenses of Python packages on PyPI",
		Data:     breakdown,
	}, nil
}

// Stats renders the cached statistics. A cold cache renders the page
// without numbers.
func (h *AggregateHandler) Stats(c echo.Context, _ *EmptyRequest) (*render.Page, error) {
	return &render.Page{
		Template: render.TemplateStats,
		Title:    h.server.Config.Catalog.SiteName + " - Statistics",
		Data:     h.stats.Get(c.Request().Context()),
	}, nil
}
