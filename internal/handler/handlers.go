package handler

import (
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one value.
type Handlers struct {
	Catalog   *CatalogHandler
	Aggregate *AggregateHandler
	API       *APIHandler
	Static    *StaticHandler
	Health    *HealthHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Catalog:   NewCatalogHandler(s, services.Packages, services.Stats),
		Aggregate: NewAggregateHandler(s, services.Packages, services.Stats),
		API:       NewAPIHandler(s, services.Packages),
		Static:    NewStaticHandler(s),
		Health:    NewHealthHandler(s),
	}
}
