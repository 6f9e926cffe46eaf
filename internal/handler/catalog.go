package handler

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/render"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/service"
)

// CatalogHandler serves the package listings and the package pages.
type CatalogHandler struct {
	Handler
	packages *service.PackageService
	stats    *service.StatsService
}

func NewCatalogHandler(s *server.Server, packages *service.PackageService, stats *service.StatsService) *CatalogHandler {
	return &CatalogHandler{
		Handler:  NewHandler(s),
		packages: packages,
		stats:    stats,
	}
}

// ListingView is the data of templates/main.html.
type ListingView struct {
	*service.Listing
	Stats   *model.Stats
	PrevURL string
	NextURL string
}

// List serves "/", "/search", "/search/:word", "/keyword/:keyword" and
// "/author/:name".
func (h *CatalogHandler) List(c echo.Context, req *ListPackagesRequest) (*render.Page, error) {
	ctx := c.Request().Context()

	listing, err := h.packages.List(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	view := &ListingView{
		Listing: listing,
		Stats:   h.stats.Get(ctx),
	}
	if listing.Current > 1 {
		view.PrevURL = pageURL(c.Request().URL, listing.Current-1)
	}
	if listing.Current < listing.Pages {
		view.NextURL = pageURL(c.Request().URL, listing.Current+1)
	}

	return &render.Page{
		Template: render.TemplateMain,
		Title:    h.server.Config.Catalog.SiteName + " - unearthing stuff about Python",
		Data:     view,
	}, nil
}

// Detail serves "/pypi/:name". A differently-cased name redirects to the
// canonical spelling.
func (h *CatalogHandler) Detail(c echo.Context, req *PackageDetailRequest) (*render.Page, error) {
	detail, err := h.packages.Detail(c.Request().Context(), req.Name)
	if err != nil {
		return nil, err
	}

	if detail.RedirectTo != "" {
		return &render.Page{Redirect: detail.RedirectTo}, nil
	}

	return &render.Page{
		Template: render.TemplatePackage,
		Title:    detail.Package.Name,
		Data:     detail,
	}, nil
}

// pageURL returns the current path and query with page replaced.
func pageURL(current *url.URL, page int) string {
	query := current.Query()
	query.Set("page", strconv.Itoa(page))

	u := url.URL{Path: current.Path, RawQuery: query.Encode()}
	return u.String()
}
