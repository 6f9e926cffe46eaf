package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/service"
)

// APIHandler serves the JSON API under /api/0.
type APIHandler struct {
	Handler
	packages *service.PackageService
}

func NewAPIHandler(s *server.Server, packages *service.PackageService) *APIHandler {
	return &APIHandler{
		Handler:  NewHandler(s),
		packages: packages,
	}
}

// Recent returns the newest uploads as {home_page, name} objects.
func (h *APIHandler) Recent(c echo.Context, _ *EmptyRequest) ([]model.RecentPackage, error) {
	recent, err := h.packages.Recent(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []model.RecentPackage{}
	}
	return recent, nil
}
