package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pydigger/pydigger/internal/lib/cache"
	"github.com/pydigger/pydigger/internal/metrics"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsService(store PackageStore, statsStore StatsStore, m *metrics.Metrics) *StatsService {
	logger := zerolog.Nop()
	svc := NewStatsService(store, statsStore, m, &logger)
	svc.now = func() time.Time { return time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestStatsService_Get(t *testing.T) {
	t.Run("cached", func(t *testing.T) {
		want := &model.Stats{Total: 3}
		svc := newStatsService(&fakeStore{}, &fakeStats{stats: want}, nil)
		assert.Same(t, want, svc.Get(context.Background()))
	})

	t.Run("miss degrades to nil", func(t *testing.T) {
		m := metrics.New()
		svc := newStatsService(&fakeStore{}, &fakeStats{getErr: cache.ErrNotCached}, m)

		assert.Nil(t, svc.Get(context.Background()))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentFailures.WithLabelValues("stats_cache")))
	})

	t.Run("redis failure degrades to nil", func(t *testing.T) {
		svc := newStatsService(&fakeStore{}, &fakeStats{getErr: errors.New("connection refused")}, nil)
		assert.Nil(t, svc.Get(context.Background()))
	})

	t.Run("no cache configured", func(t *testing.T) {
		svc := newStatsService(&fakeStore{}, nil, nil)
		assert.Nil(t, svc.Get(context.Background()))
	})
}

func TestStatsService_Compute(t *testing.T) {
	latest := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	counts := map[string]int64{"all": 100}
	for i, name := range repository.CannedNames {
		f, _ := repository.Canned(name)
		counts[f.String()] = int64(i + 1)
	}

	svc := newStatsService(&fakeStore{counts: counts, latest: &latest}, nil, nil)

	stats, err := svc.Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(100), stats.Total)
	assert.Len(t, stats.Cases, len(repository.CannedNames))
	assert.Equal(t, int64(1), stats.Cases["has_license"])
	assert.Equal(t, int64(2), stats.Cases["no_license"])
	assert.Equal(t, &latest, stats.LastUpload)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), stats.GeneratedAt)
}

func TestStatsService_RefreshStats(t *testing.T) {
	t.Run("writes the cache", func(t *testing.T) {
		m := metrics.New()
		statsStore := &fakeStats{}
		svc := newStatsService(&fakeStore{counts: map[string]int64{"all": 5}}, statsStore, m)

		stats, err := svc.RefreshStats(context.Background())
		require.NoError(t, err)
		assert.Same(t, stats, statsStore.stats)
		assert.Equal(t, int64(5), statsStore.stats.Total)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StatsRefreshes.WithLabelValues("success")))
	})

	t.Run("store failure", func(t *testing.T) {
		m := metrics.New()
		statsStore := &fakeStats{}
		svc := newStatsService(&fakeStore{err: errors.New("timeout")}, statsStore, m)

		_, err := svc.RefreshStats(context.Background())
		require.Error(t, err)
		assert.Nil(t, statsStore.stats)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StatsRefreshes.WithLabelValues("error")))
	})

	t.Run("no cache configured", func(t *testing.T) {
		svc := newStatsService(&fakeStore{}, nil, nil)

		_, err := svc.RefreshStats(context.Background())
		assert.ErrorIs(t, err, ErrStatsCacheDisabled)
	})
}
