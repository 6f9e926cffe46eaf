package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pydigger/pydigger/internal/errs"
	"github.com/pydigger/pydigger/internal/metrics"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newPackageService(store PackageStore, m *metrics.Metrics) *PackageService {
	logger := zerolog.Nop()
	return NewPackageService(store, testCatalog(), m, &logger)
}

func TestResolveFilter_Precedence(t *testing.T) {
	svc := newPackageService(&fakeStore{}, nil)

	tests := []struct {
		name       string
		query      ListQuery
		wantKind   repository.FilterKind
		wantValue  string
		wantSearch string
	}{
		{name: "empty", query: ListQuery{}, wantKind: repository.KindAll},
		{name: "canned word with dashes", query: ListQuery{Word: "has-license", Search: "x"}, wantKind: repository.KindCanned, wantValue: "has_license"},
		{name: "unknown word is ignored", query: ListQuery{Word: "nonsense"}, wantKind: repository.KindAll},
		{name: "unknown word keeps search", query: ListQuery{Word: "nonsense", Search: "flask"}, wantKind: repository.KindSearch, wantValue: "flask", wantSearch: "flask"},
		{name: "keyword beats canned", query: ListQuery{Word: "no_author", Keyword: "web", Search: "x"}, wantKind: repository.KindKeyword, wantValue: "web"},
		{name: "author beats keyword", query: ListQuery{Keyword: "web", Author: "Armin"}, wantKind: repository.KindAuthor, wantValue: "Armin"},
		{name: "search is trimmed", query: ListQuery{Search: "  flask "}, wantKind: repository.KindSearch, wantValue: "flask", wantSearch: "flask"},
		{name: "license beats everything", query: ListQuery{Author: "Armin", License: "MIT"}, wantKind: repository.KindLicense, wantValue: "MIT"},
		{name: "license keeps search text", query: ListQuery{Search: "flask", License: "__empty__"}, wantKind: repository.KindLicense, wantValue: "__empty__", wantSearch: "flask"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, search := svc.ResolveFilter(tt.query)
			assert.Equal(t, tt.wantKind, f.Kind())
			assert.Equal(t, tt.wantValue, f.Value())
			assert.Equal(t, tt.wantSearch, search)
		})
	}
}

func TestList_Pagination(t *testing.T) {
	packages := make([]model.Package, 45)
	for i := range packages {
		packages[i] = model.Package{Name: "pkg"}
	}

	tests := []struct {
		name      string
		query     ListQuery
		found     int64
		wantSkip  int64
		wantLimit int64
		wantPages int
		wantCount int
	}{
		{name: "defaults", query: ListQuery{}, found: 45, wantSkip: 0, wantLimit: 20, wantPages: 3, wantCount: 20},
		{name: "zero limit means default", query: ListQuery{Limit: 0, Page: 2}, found: 45, wantSkip: 20, wantLimit: 20, wantPages: 3, wantCount: 20},
		{name: "negative limit means default", query: ListQuery{Limit: -5}, found: 45, wantSkip: 0, wantLimit: 20, wantPages: 3, wantCount: 20},
		{name: "custom limit", query: ListQuery{Limit: 10, Page: 3}, found: 45, wantSkip: 20, wantLimit: 10, wantPages: 5, wantCount: 10},
		{name: "negative page clamps skip", query: ListQuery{Page: -2}, found: 45, wantSkip: 0, wantLimit: 20, wantPages: 3, wantCount: 20},
		{name: "nothing found", query: ListQuery{}, found: 0, wantSkip: 0, wantLimit: 20, wantPages: 0, wantCount: 0},
		{name: "limit is capped", query: ListQuery{Limit: 1_000_000_000_000_000}, found: 45, wantSkip: 0, wantLimit: 100, wantPages: 1, wantCount: 45},
		{name: "capped limit pages", query: ListQuery{Limit: 500, Page: 2}, found: 45, wantSkip: 100, wantLimit: 100, wantPages: 1, wantCount: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{
				packages: packages[:tt.found],
				counts:   map[string]int64{"all": tt.found},
			}
			svc := newPackageService(store, nil)

			listing, err := svc.List(context.Background(), tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSkip, store.lastSkip)
			assert.Equal(t, tt.wantLimit, store.lastLimit)
			assert.Equal(t, tt.wantPages, listing.Pages)
			assert.Equal(t, tt.wantCount, listing.Count)
			assert.LessOrEqual(t, listing.Count, listing.Limit)
			assert.Equal(t, tt.found, listing.TotalFound)
		})
	}
}

func TestList_HugeNumbersDoNotOverflow(t *testing.T) {
	tests := []struct {
		name        string
		query       ListQuery
		wantSkip    int64
		wantCurrent int
	}{
		{name: "max page and limit", query: ListQuery{Limit: math.MaxInt, Page: math.MaxInt}, wantSkip: 100 * (math.MaxInt32 - 1), wantCurrent: math.MaxInt32},
		{name: "min page", query: ListQuery{Page: math.MinInt}, wantSkip: 0, wantCurrent: math.MinInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{counts: map[string]int64{"all": 45}}
			svc := newPackageService(store, nil)

			listing, err := svc.List(context.Background(), tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSkip, store.lastSkip)
			assert.LessOrEqual(t, store.lastLimit, int64(100))
			assert.Positive(t, store.lastLimit)
			assert.Equal(t, tt.wantCurrent, listing.Current)
			assert.GreaterOrEqual(t, listing.Pages, 0)
		})
	}
}

func TestList_AuthorGravatar(t *testing.T) {
	author := repository.Author("Armin").String()

	t.Run("first record email", func(t *testing.T) {
		store := &fakeStore{
			packages: []model.Package{{Name: "Flask", AuthorEmail: strPtr("foo@bar.com")}},
			counts:   map[string]int64{"all": 10, author: 1},
		}
		svc := newPackageService(store, nil)

		listing, err := svc.List(context.Background(), ListQuery{Author: "Armin"})
		require.NoError(t, err)
		assert.Equal(t, "f3ada405ce890b6f8204094deb12d8a8", listing.Gravatar)
		assert.Equal(t, "Armin", listing.Author)
		assert.Equal(t, int64(10), listing.TotalIndexed)
	})

	t.Run("missing email degrades", func(t *testing.T) {
		m := metrics.New()
		store := &fakeStore{
			packages: []model.Package{{Name: "Flask"}},
			counts:   map[string]int64{author: 1},
		}
		svc := newPackageService(store, m)

		listing, err := svc.List(context.Background(), ListQuery{Author: "Armin"})
		require.NoError(t, err)
		assert.Empty(t, listing.Gravatar)
		assert.Equal(t, 0, testutil.CollectAndCount(m.EnrichmentFailures))
	})
}

func TestList_StoreError(t *testing.T) {
	svc := newPackageService(&fakeStore{err: errors.New("boom")}, nil)

	_, err := svc.List(context.Background(), ListQuery{})
	assert.EqualError(t, err, "boom")
}

func TestDetail(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "name", Value: "Flask"}})
	require.NoError(t, err)

	flask := &model.Package{Name: "Flask", LowercaseName: "flask", AuthorEmail: strPtr("foo@bar.com"), Raw: raw}
	store := &fakeStore{byLower: map[string]*model.Package{"flask": flask}}

	t.Run("exact name renders", func(t *testing.T) {
		svc := newPackageService(store, nil)

		detail, err := svc.Detail(context.Background(), "Flask")
		require.NoError(t, err)
		assert.Empty(t, detail.RedirectTo)
		assert.Same(t, flask, detail.Package)
		assert.Equal(t, "f3ada405ce890b6f8204094deb12d8a8", detail.Gravatar)
		assert.Equal(t, "{\n    \"name\": \"Flask\"\n}", detail.Raw)
	})

	t.Run("other casing redirects", func(t *testing.T) {
		m := metrics.New()
		svc := newPackageService(store, m)

		detail, err := svc.Detail(context.Background(), "FLASK")
		require.NoError(t, err)
		assert.Equal(t, "/pypi/Flask", detail.RedirectTo)
		assert.Nil(t, detail.Package)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PackageLookups.WithLabelValues("redirect")))
	})

	t.Run("unknown is not found", func(t *testing.T) {
		svc := newPackageService(store, nil)

		_, err := svc.Detail(context.Background(), "Django")

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, "Django not found", httpErr.Message)
	})
}

func TestRecent_UsesConfiguredLimit(t *testing.T) {
	store := &fakeStore{recent: []model.RecentPackage{{Name: "Flask"}}}
	svc := newPackageService(store, nil)

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	assert.Equal(t, int64(20), store.lastLimit)
}

func TestKeywords_Tally(t *testing.T) {
	store := &fakeStore{keywords: [][]string{
		{"web", "wsgi"},
		{"web"},
		{"cli", "web"},
		{"wsgi"},
	}}
	svc := newPackageService(store, nil)

	stats, err := svc.Keywords(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.KeywordCount{
		{Keyword: "web", Count: 3},
		{Keyword: "wsgi", Count: 2},
		{Keyword: "cli", Count: 1},
	}, stats.Keywords)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Unique)

	sum := 0
	for _, k := range stats.Keywords {
		sum += k.Count
	}
	assert.Equal(t, stats.Total, sum)
}

func TestLicenses_Breakdown(t *testing.T) {
	long := strings.Repeat("x", 51)
	edge := strings.Repeat("y", 50)

	hasLicense, _ := repository.Canned("has_license")
	noLicense, _ := repository.Canned("no_license")

	store := &fakeStore{
		licenses: []model.LicenseCount{
			{License: strPtr("MIT"), Count: 5},
			{License: nil, Count: 7},
			{License: strPtr("BSD"), Count: 5},
			{License: strPtr(long), Count: 1},
			{License: strPtr(edge), Count: 1},
		},
		counts: map[string]int64{
			"all":               19,
			hasLicense.String(): 12,
			noLicense.String():  7,
		},
	}
	svc := newPackageService(store, nil)

	breakdown, err := svc.Licenses(context.Background())
	require.NoError(t, err)

	labels := make([]string, 0, len(breakdown.Licenses))
	for _, l := range breakdown.Licenses {
		labels = append(labels, l.Label())
	}
	assert.Equal(t, []string{"None", "BSD", "MIT", long, edge}, labels)

	assert.True(t, breakdown.Licenses[3].Long)
	assert.False(t, breakdown.Licenses[4].Long)
	assert.False(t, breakdown.Licenses[0].Long)

	assert.Equal(t, int64(19), breakdown.Total)
	assert.Equal(t, int64(12), breakdown.HasLicense)
	assert.Equal(t, int64(7), breakdown.NoLicense)
}
