package repository

import (
	"context"
	"time"

	"github.com/pydigger/pydigger/internal/model"
	"github.com/pydigger/pydigger/internal/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst is the order of every package listing.
var newestFirst = bson.D{{Key: "upload_time", Value: -1}}

// PackageRepository reads the package collection. It never writes.
type PackageRepository struct {
	coll *mongo.Collection
}

func NewPackageRepository(coll *mongo.Collection) *PackageRepository {
	return &PackageRepository{coll: coll}
}

func (r *PackageRepository) wrap(err error) error {
	return storeerr.Wrap(err, r.coll.Name())
}

// findCapacityHint bounds the preallocation of Find results.
const findCapacityHint = 100

// Find returns one page of packages matching f, newest upload first.
func (r *PackageRepository) Find(ctx context.Context, f Filter, skip, limit int64) ([]model.Package, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, f.Document(), opts)
	if err != nil {
		return nil, r.wrap(err)
	}

	packages := make([]model.Package, 0, max(min(limit, findCapacityHint), 0))
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, r.wrap(err)
	}

	return packages, nil
}

// Count returns the number of packages matching f.
func (r *PackageRepository) Count(ctx context.Context, f Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, f.Document())
	if err != nil {
		return 0, r.wrap(err)
	}
	return n, nil
}

// FindByLowercaseName looks a package up by its lcname.
//
// The raw document is kept on the result for the detail page dump.
// A missing package yields a storeerr NotFound error.
func (r *PackageRepository) FindByLowercaseName(ctx context.Context, lcname string) (*model.Package, error) {
	raw, err := r.coll.FindOne(ctx, bson.D{{Key: "lcname", Value: lcname}}).Raw()
	if err != nil {
		return nil, r.wrap(err)
	}

	var pkg model.Package
	if err := bson.Unmarshal(raw, &pkg); err != nil {
		return nil, r.wrap(err)
	}
	pkg.Raw = raw

	return &pkg, nil
}

// Recent returns the name and home page of the latest uploads.
func (r *PackageRepository) Recent(ctx context.Context, limit int64) ([]model.RecentPackage, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetLimit(limit).
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "name", Value: 1},
			{Key: "home_page", Value: 1},
		})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, r.wrap(err)
	}

	recent := make([]model.RecentPackage, 0, limit)
	if err := cursor.All(ctx, &recent); err != nil {
		return nil, r.wrap(err)
	}

	return recent, nil
}

// EachKeywordList streams the split_keywords of every package that has at
// least one keyword and calls fn for each list.
func (r *PackageRepository) EachKeywordList(ctx context.Context, fn func(keywords []string)) error {
	filter := bson.D{{Key: "split_keywords.0", Value: bson.D{{Key: "$exists", Value: true}}}}
	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 0},
		{Key: "split_keywords", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return r.wrap(err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			SplitKeywords []string `bson:"split_keywords"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return r.wrap(err)
		}
		fn(doc.SplitKeywords)
	}

	return r.wrap(cursor.Err())
}

// LicenseCounts groups packages by license value. Missing and null
// licenses share the nil group. The result is unordered.
func (r *PackageRepository) LicenseCounts(ctx context.Context) ([]model.LicenseCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$license"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, r.wrap(err)
	}

	var counts []model.LicenseCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, r.wrap(err)
	}

	return counts, nil
}

// LatestUpload returns the newest upload_time, nil for an empty catalog.
func (r *PackageRepository) LatestUpload(ctx context.Context) (*time.Time, error) {
	opts := options.FindOne().
		SetSort(newestFirst).
		SetProjection(bson.D{{Key: "upload_time", Value: 1}})

	var doc struct {
		UploadTime time.Time `bson:"upload_time"`
	}
	err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err != nil {
		if storeerr.IsNotFound(err) {
			return nil, nil
		}
		return nil, r.wrap(err)
	}

	return &doc.UploadTime, nil
}
