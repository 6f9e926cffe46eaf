package repository

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterKind tells which listing a Filter was built for.
type FilterKind int

const (
	KindAll FilterKind = iota
	KindCanned
	KindKeyword
	KindAuthor
	KindSearch
	KindLicense
)

func (k FilterKind) String() string {
	switch k {
	case KindCanned:
		return "canned"
	case KindKeyword:
		return "keyword"
	case KindAuthor:
		return "author"
	case KindSearch:
		return "search"
	case KindLicense:
		return "license"
	default:
		return "all"
	}
}

// Special license values understood by License().
const (
	LicenseLong  = "__long__"
	LicenseEmpty = "__empty__"
	LicenseNone  = "None"
)

// Filter is an immutable package query.
//
// Build one with the constructor of the listing it serves. The zero value
// (same as All()) matches every package.
type Filter struct {
	kind  FilterKind
	value string

	// maxLicense is only used by License(LicenseLong, n).
	maxLicense int
}

// All matches every package.
func All() Filter {
	return Filter{kind: KindAll}
}

// Canned returns the named canned query. ok is false for unknown names.
func Canned(name string) (f Filter, ok bool) {
	if !IsCanned(name) {
		return Filter{}, false
	}
	return Filter{kind: KindCanned, value: name}, true
}

// Keyword matches packages whose split_keywords contain keyword.
func Keyword(keyword string) Filter {
	return Filter{kind: KindKeyword, value: keyword}
}

// Author matches packages with exactly this author.
func Author(name string) Filter {
	return Filter{kind: KindAuthor, value: name}
}

// Search matches packages whose name contains text (case-insensitive,
// literal) or whose split_keywords contain lower(text).
func Search(text string) Filter {
	return Filter{kind: KindSearch, value: text}
}

// License matches one license value. LicenseLong selects licenses longer
// than maxLength, LicenseEmpty existing empty licenses and LicenseNone
// null or missing ones.
func License(value string, maxLength int) Filter {
	return Filter{kind: KindLicense, value: value, maxLicense: maxLength}
}

func (f Filter) Kind() FilterKind { return f.kind }

func (f Filter) Value() string { return f.value }

func (f Filter) String() string {
	if f.kind == KindAll {
		return "all"
	}
	return fmt.Sprintf("%s=%q", f.kind, f.value)
}

// Document renders the filter as a MongoDB query document.
func (f Filter) Document() bson.D {
	switch f.kind {
	case KindCanned:
		return cannedQueries[f.value].query
	case KindKeyword:
		return bson.D{{Key: "split_keywords", Value: f.value}}
	case KindAuthor:
		return bson.D{{Key: "author", Value: f.value}}
	case KindSearch:
		return bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(f.value), Options: "i"}}},
			bson.D{{Key: "split_keywords", Value: strings.ToLower(f.value)}},
		}}}
	case KindLicense:
		return licenseDocument(f.value, f.maxLicense)
	}
	return bson.D{}
}

func licenseDocument(value string, maxLength int) bson.D {
	switch value {
	case LicenseLong:
		return bson.D{{Key: "license", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$regex", Value: primitive.Regex{Pattern: fmt.Sprintf(`^[\s\S]{%d}`, maxLength+1)}},
		}}}
	case LicenseEmpty:
		return bson.D{{Key: "license", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$eq", Value: ""},
		}}}
	case LicenseNone:
		// A null equality also matches documents without the field.
		return bson.D{{Key: "license", Value: nil}}
	}
	return bson.D{{Key: "license", Value: value}}
}
