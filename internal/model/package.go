// Package model holds the read-only projections decoded from the catalog
// and the values computed from them.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package is one PyPI release as stored by the crawler.
//
// Optional fields are pointers: a nil HomePage means the field is missing
// or null, which the UI renders differently from an empty string.
// Every field the struct does not name ends up in Extra.
type Package struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name          string             `bson:"name" json:"name"`
	LowercaseName string             `bson:"lcname" json:"lcname"`
	Version       string             `bson:"version,omitempty" json:"version,omitempty"`
	Summary       *string            `bson:"summary,omitempty" json:"summary,omitempty"`
	Author        *string            `bson:"author,omitempty" json:"author,omitempty"`
	AuthorEmail   *string            `bson:"author_email,omitempty" json:"author_email,omitempty"`
	HomePage      *string            `bson:"home_page,omitempty" json:"home_page,omitempty"`
	License       *string            `bson:"license,omitempty" json:"license,omitempty"`
	Keywords      *string            `bson:"keywords,omitempty" json:"keywords,omitempty"`
	SplitKeywords []string           `bson:"split_keywords,omitempty" json:"split_keywords,omitempty"`
	UploadTime    time.Time          `bson:"upload_time,omitempty" json:"upload_time"`

	Extra map[string]interface{} `bson:",inline" json:"-"`

	// Raw is the undecoded document, set by single-record lookups.
	Raw bson.Raw `bson:"-" json:"-"`
}

// Str dereferences an optional string field, "" when absent.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RecentPackage is one entry of the recent uploads API.
type RecentPackage struct {
	HomePage *string `bson:"home_page" json:"home_page"`
	Name     string  `bson:"name" json:"name"`
}

// KeywordCount is the number of packages tagged with a keyword.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordStats is the result of tallying split_keywords over the catalog.
type KeywordStats struct {
	Keywords []KeywordCount `json:"keywords"`
	Total    int            `json:"total"`
	Unique   int            `json:"unique"`
}

// LicenseCount is the number of packages sharing one license value.
//
// License is nil for packages without the field (or with null). Long
// licenses are flagged so the page can truncate them.
type LicenseCount struct {
	License *string `bson:"_id" json:"license"`
	Count   int     `bson:"count" json:"count"`
	Long    bool    `bson:"-" json:"long"`
}

// Label is the display value of the license: "None" for null/missing.
func (l LicenseCount) Label() string {
	if l.License == nil {
		return "None"
	}
	return *l.License
}

// Stats is the cache entry shown on the statistics pages.
type Stats struct {
	Total       int64            `json:"total"`
	Cases       map[string]int64 `json:"cases"`
	LastUpload  *time.Time       `json:"last_upload,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}
