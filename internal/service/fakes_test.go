package service

import (
	"context"
	"sync"
	"time"

	"github.com/pydigger/pydigger/internal/config"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/pydigger/pydigger/internal/storeerr"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeStore answers from canned values and records the last Find call.
type fakeStore struct {
	mu sync.Mutex

	counts   map[string]int64 // keyed by Filter.String()
	packages []model.Package
	byLower  map[string]*model.Package
	recent   []model.RecentPackage
	keywords [][]string
	licenses []model.LicenseCount
	latest   *time.Time
	err      error

	lastFilter repository.Filter
	lastSkip   int64
	lastLimit  int64
}

func (f *fakeStore) Find(_ context.Context, filter repository.Filter, skip, limit int64) ([]model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter, f.lastSkip, f.lastLimit = filter, skip, limit
	if f.err != nil {
		return nil, f.err
	}
	if int64(len(f.packages)) > limit {
		return f.packages[:limit], nil
	}
	return f.packages, nil
}

func (f *fakeStore) Count(_ context.Context, filter repository.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[filter.String()], nil
}

func (f *fakeStore) FindByLowercaseName(_ context.Context, lcname string) (*model.Package, error) {
	if f.err != nil {
		return nil, f.err
	}
	pkg, ok := f.byLower[lcname]
	if !ok {
		return nil, storeerr.Wrap(mongo.ErrNoDocuments, "packages")
	}
	return pkg, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int64) ([]model.RecentPackage, error) {
	f.lastLimit = limit
	return f.recent, f.err
}

func (f *fakeStore) EachKeywordList(_ context.Context, fn func(keywords []string)) error {
	if f.err != nil {
		return f.err
	}
	for _, k := range f.keywords {
		fn(k)
	}
	return nil
}

func (f *fakeStore) LicenseCounts(context.Context) ([]model.LicenseCount, error) {
	return f.licenses, f.err
}

func (f *fakeStore) LatestUpload(context.Context) (*time.Time, error) {
	return f.latest, f.err
}

// fakeStats is an in-memory StatsStore.
type fakeStats struct {
	stats  *model.Stats
	getErr error
	setErr error
}

func (f *fakeStats) Get(context.Context) (*model.Stats, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stats, nil
}

func (f *fakeStats) Set(_ context.Context, stats *model.Stats) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.stats = stats
	return nil
}

func testCatalog() *config.CatalogConfig {
	return &config.CatalogConfig{
		SiteName:         "PyDigger",
		DefaultLimit:     20,
		MaxLimit:         100,
		RecentLimit:      20,
		MaxLicenseLength: 50,
	}
}

func strPtr(s string) *string { return &s }
