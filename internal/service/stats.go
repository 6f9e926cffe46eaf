package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pydigger/pydigger/internal/lib/cache"
	"github.com/pydigger/pydigger/internal/metrics"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrStatsCacheDisabled is returned by RefreshStats without a cache.
var ErrStatsCacheDisabled = errors.New("stats cache is not configured")

// maxParallelCounts bounds the count commands issued at once by Compute.
const maxParallelCounts = 4

type StatsService struct {
	store   PackageStore
	cache   StatsStore
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewStatsService builds the service. cache may be nil when Redis is not
// configured; Get then always degrades to "no stats".
func NewStatsService(store PackageStore, cache StatsStore, m *metrics.Metrics, logger *zerolog.Logger) *StatsService {
	return &StatsService{
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the cached stats, or nil when they are missing or unreadable.
// Failures are logged and never surface to the page.
func (s *StatsService) Get(ctx context.Context) *model.Stats {
	if s.cache == nil {
		return nil
	}

	stats, err := s.cache.Get(ctx)
	if err != nil {
		if errors.Is(err, cache.ErrNotCached) {
			s.logger.Info().Msg("stats cache is empty")
		} else {
			s.logger.Warn().Err(err).Msg("could not read stats cache")
		}
		s.metrics.IncrementEnrichmentFailure("stats_cache")
		return nil
	}

	return stats
}

// Compute counts the catalog: total, every canned query and the latest
// upload time. Counts run concurrently.
func (s *StatsService) Compute(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{
		Cases: make(map[string]int64, len(repository.CannedNames)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCounts)

	g.Go(func() error {
		total, err := s.store.Count(gctx, repository.All())
		if err != nil {
			return fmt.Errorf("counting packages: %w", err)
		}
		mu.Lock()
		stats.Total = total
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		latest, err := s.store.LatestUpload(gctx)
		if err != nil {
			return fmt.Errorf("reading latest upload: %w", err)
		}
		mu.Lock()
		stats.LastUpload = latest
		mu.Unlock()
		return nil
	})

	for _, name := range repository.CannedNames {
		filter, _ := repository.Canned(name)
		g.Go(func() error {
			n, err := s.store.Count(gctx, filter)
			if err != nil {
				return fmt.Errorf("counting %s: %w", name, err)
			}
			mu.Lock()
			stats.Cases[name] = n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.GeneratedAt = s.now().UTC()
	return stats, nil
}

// RefreshStats computes the stats and writes them to the cache.
func (s *StatsService) RefreshStats(ctx context.Context) (*model.Stats, error) {
	stats, err := s.refresh(ctx)
	s.metrics.IncrementStatsRefresh(err)
	return stats, err
}

func (s *StatsService) refresh(ctx context.Context) (*model.Stats, error) {
	if s.cache == nil {
		return nil, ErrStatsCacheDisabled
	}

	stats, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, stats); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("total", stats.Total).
		Int("cases", len(stats.Cases)).
		Msg("stats cache refreshed")

	return stats, nil
}
