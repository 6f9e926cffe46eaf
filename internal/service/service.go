// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, turns it into
// repository filters, and computes the numbers the pages show
// (pagination, keyword tallies, license breakdowns, stats).
package service

import (
	"context"
	"time"

	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/repository"
)

// PackageStore is the read access to the package collection.
type PackageStore interface {
	Find(ctx context.Context, f repository.Filter, skip, limit int64) ([]model.Package, error)
	Count(ctx context.Context, f repository.Filter) (int64, error)
	FindByLowercaseName(ctx context.Context, lcname string) (*model.Package, error)
	Recent(ctx context.Context, limit int64) ([]model.RecentPackage, error)
	EachKeywordList(ctx context.Context, fn func(keywords []string)) error
	LicenseCounts(ctx context.Context) ([]model.LicenseCount, error)
	LatestUpload(ctx context.Context) (*time.Time, error)
}

// StatsStore holds the precomputed stats entry.
type StatsStore interface {
	Get(ctx context.Context) (*model.Stats, error)
	Set(ctx context.Context, stats *model.Stats) error
}
