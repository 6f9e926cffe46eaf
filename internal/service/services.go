package service

import (
	"github.com/pydigger/pydigger/internal/lib/cache"
	"github.com/pydigger/pydigger/internal/lib/job"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/pydigger/pydigger/internal/server"
)

type Services struct {
	Packages *PackageService
	Stats    *StatsService
	Job      *job.JobService
}

// NewService builds the services over the repositories and, when Redis is
// configured, the stats cache. The job handlers are initialized here since
// the stats refresh task runs StatsService.RefreshStats.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var statsStore StatsStore
	if s.Redis != nil {
		statsStore = cache.NewStatsCache(s.Redis, s.Config.Redis.StatsKey)
	}

	statsService := NewStatsService(repos.Packages, statsStore, s.Metrics, s.Logger)

	if s.Job != nil {
		s.Job.InitHandlers(statsService)
	}

	return &Services{
		Packages: NewPackageService(repos.Packages, &s.Config.Catalog, s.Metrics, s.Logger),
		Stats:    statsService,
		Job:      s.Job,
	}, nil
}
