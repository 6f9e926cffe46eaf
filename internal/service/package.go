package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pydigger/pydigger/internal/config"
	"github.com/pydigger/pydigger/internal/errs"
	"github.com/pydigger/pydigger/internal/lib/utils"
	"github.com/pydigger/pydigger/internal/metrics"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/pydigger/pydigger/internal/storeerr"
	"github.com/rs/zerolog"
)

// maxPage bounds the requested page so the skip stays within int64.
const maxPage = math.MaxInt32

// ListQuery carries the listing parameters after parsing.
// Zero Page or Limit mean "use the default".
type ListQuery struct {
	Word    string
	Keyword string
	Author  string
	Search  string
	License string
	Page    int
	Limit   int
}

// Listing is one page of a package list plus its paging numbers.
type Listing struct {
	Filter       repository.Filter
	Packages     []model.Package
	TotalIndexed int64
	TotalFound   int64
	Count        int
	Pages        int
	Current      int
	Limit        int
	Search       string
	Author       string
	Gravatar     string
}

// PackageDetail is either a package to render or a redirect to its
// canonical URL.
type PackageDetail struct {
	Package    *model.Package
	Gravatar   string
	Raw        string
	RedirectTo string
}

// LicenseBreakdown is the content of the licenses page.
type LicenseBreakdown struct {
	Licenses   []model.LicenseCount
	Total      int64
	HasLicense int64
	NoLicense  int64
}

type PackageService struct {
	store   PackageStore
	catalog *config.CatalogConfig
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewPackageService(store PackageStore, catalog *config.CatalogConfig, m *metrics.Metrics, logger *zerolog.Logger) *PackageService {
	return &PackageService{
		store:   store,
		catalog: catalog,
		metrics: m,
		logger:  logger,
	}
}

// ResolveFilter applies the listing precedence and returns the filter and
// the search text that remains in effect.
//
// Each step replaces the filter built so far:
// canned word, keyword, author, free-text search, license.
// A canned word, a keyword or an author clears the search text.
func (s *PackageService) ResolveFilter(q ListQuery) (repository.Filter, string) {
	filter := repository.All()
	search := strings.TrimSpace(q.Search)

	word := strings.ReplaceAll(q.Word, "-", "_")
	if canned, ok := repository.Canned(word); ok {
		filter = canned
		search = ""
	}

	if q.Keyword != "" {
		filter = repository.Keyword(q.Keyword)
		search = ""
	}

	if q.Author != "" {
		filter = repository.Author(q.Author)
		search = ""
	}

	if search != "" {
		filter = repository.Search(search)
	}

	if license := strings.TrimSpace(q.License); license != "" {
		filter = repository.License(license, s.catalog.MaxLicenseLength)
	}

	return filter, search
}

// List runs a listing query and computes its pagination.
func (s *PackageService) List(ctx context.Context, q ListQuery) (*Listing, error) {
	filter, search := s.ResolveFilter(q)

	limit := q.Limit
	if limit <= 0 {
		limit = s.catalog.DefaultLimit
	}
	limit = min(limit, s.catalog.MaxLimit)

	page := q.Page
	if page == 0 {
		page = 1
	}
	page = min(page, maxPage)

	var skip int64
	if page > 1 {
		skip = int64(limit) * int64(page-1)
	}

	totalIndexed, err := s.store.Count(ctx, repository.All())
	if err != nil {
		return nil, err
	}

	packages, err := s.store.Find(ctx, filter, skip, int64(limit))
	if err != nil {
		return nil, err
	}

	totalFound, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		Filter:       filter,
		Packages:     packages,
		TotalIndexed: totalIndexed,
		TotalFound:   totalFound,
		Count:        len(packages),
		Pages:        int((totalFound + int64(limit) - 1) / int64(limit)),
		Current:      page,
		Limit:        limit,
		Search:       search,
		Author:       q.Author,
	}

	if q.Author != "" && totalFound > 0 && len(packages) > 0 {
		gravatar, err := utils.Gravatar(packages[0].AuthorEmail)
		if err != nil {
			s.logger.Debug().Err(err).Str("author", q.Author).Msg("no gravatar for author")
		}
		listing.Gravatar = gravatar
	}

	return listing, nil
}

// Detail looks a package up by name, case-insensitively.
//
// A name that differs from the stored one only in case produces a
// redirect to the canonical spelling. An unknown name is a 404.
func (s *PackageService) Detail(ctx context.Context, name string) (*PackageDetail, error) {
	pkg, err := s.store.FindByLowercaseName(ctx, strings.ToLower(name))
	if err != nil {
		if storeerr.IsNotFound(err) {
			s.metrics.IncrementPackageLookup("not_found")
			code := "PACKAGE_NOT_FOUND"
			return nil, errs.NewNotFoundError(fmt.Sprintf("%s not found", name), true, &code)
		}
		return nil, err
	}

	if pkg.Name != name {
		s.metrics.IncrementPackageLookup("redirect")
		return &PackageDetail{RedirectTo: "/pypi/" + url.PathEscape(pkg.Name)}, nil
	}

	s.metrics.IncrementPackageLookup("found")
	detail := &PackageDetail{Package: pkg}

	if gravatar, err := utils.Gravatar(pkg.AuthorEmail); err != nil {
		s.logger.Debug().Err(err).Str("package", pkg.Name).Msg("no gravatar for package")
	} else {
		detail.Gravatar = gravatar
	}

	if len(pkg.Raw) > 0 {
		raw, err := utils.RawDump(pkg.Raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("package", pkg.Name).Msg("could not dump raw document")
			s.metrics.IncrementEnrichmentFailure("raw_dump")
		}
		detail.Raw = raw
	}

	return detail, nil
}

// Recent returns the latest uploads for the JSON API.
func (s *PackageService) Recent(ctx context.Context) ([]model.RecentPackage, error) {
	return s.store.Recent(ctx, int64(s.catalog.RecentLimit))
}

// Keywords tallies split_keywords over every package.
//
// Keywords are ordered by count, most used first, then alphabetically.
func (s *PackageService) Keywords(ctx context.Context) (*model.KeywordStats, error) {
	counts := make(map[string]int)
	total := 0

	err := s.store.EachKeywordList(ctx, func(keywords []string) {
		for _, k := range keywords {
			counts[k]++
			total++
		}
	})
	if err != nil {
		return nil, err
	}

	keywords := make([]model.KeywordCount, 0, len(counts))
	for k, n := range counts {
		keywords = append(keywords, model.KeywordCount{Keyword: k, Count: n})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})

	return &model.KeywordStats{
		Keywords: keywords,
		Total:    total,
		Unique:   len(keywords),
	}, nil
}

// Licenses groups packages by license, most common first (ties by label).
// Licenses longer than the configured maximum are flagged Long.
func (s *PackageService) Licenses(ctx context.Context) (*LicenseBreakdown, error) {
	licenses, err := s.store.LicenseCounts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range licenses {
		licenses[i].Long = utf8.RuneCountInString(licenses[i].Label()) > s.catalog.MaxLicenseLength
	}
	sort.Slice(licenses, func(i, j int) bool {
		if licenses[i].Count != licenses[j].Count {
			return licenses[i].Count > licenses[j].Count
		}
		return licenses[i].Label() < licenses[j].Label()
	})

	total, err := s.store.Count(ctx, repository.All())
	if err != nil {
		return nil, err
	}

	hasFilter, _ := repository.Canned("has_license")
	hasLicense, err := s.store.Count(ctx, hasFilter)
	if err != nil {
		return nil, err
	}

	noFilter, _ := repository.Canned("no_license")
	noLicense, err := s.store.Count(ctx, noFilter)
	if err != nil {
		return nil, err
	}

	return &LicenseBreakdown{
		Licenses:   licenses,
		Total:      total,
		HasLicense: hasLicense,
		NoLicense:  noLicense,
	}, nil
}
