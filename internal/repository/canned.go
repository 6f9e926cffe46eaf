package repository

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type cannedQuery struct {
	title string
	query bson.D
}

// CannedNames lists the canned queries in display order.
var CannedNames = []string{
	"has_license", "no_license",
	"has_github", "no_github",
	"has_home_page", "no_home_page",
	"has_author", "no_author",
	"has_summary", "no_summary",
	"has_keywords", "no_keywords",
}

var cannedQueries = buildCannedQueries()

func buildCannedQueries() map[string]cannedQuery {
	title := cases.Title(language.English)
	queries := make(map[string]cannedQuery, len(CannedNames))

	for _, field := range []string{"license", "home_page", "author", "summary"} {
		queries["has_"+field] = cannedQuery{query: hasValue(field)}
		queries["no_"+field] = cannedQuery{query: noValue(field)}
	}

	queries["has_github"] = cannedQuery{query: bson.D{{Key: "github", Value: bson.D{
		{Key: "$nin", Value: bson.A{nil, false, ""}},
	}}}}
	queries["no_github"] = cannedQuery{query: bson.D{{Key: "github", Value: bson.D{
		{Key: "$in", Value: bson.A{nil, false, ""}},
	}}}}

	queries["has_keywords"] = cannedQuery{query: bson.D{{Key: "split_keywords.0", Value: bson.D{{Key: "$exists", Value: true}}}}}
	queries["no_keywords"] = cannedQuery{query: bson.D{{Key: "split_keywords.0", Value: bson.D{{Key: "$exists", Value: false}}}}}

	for name, q := range queries {
		q.title = title.String(strings.ReplaceAll(name, "_", " "))
		queries[name] = q
	}

	return queries
}

// hasValue matches a present, non-null, non-empty string field.
func hasValue(field string) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}
}

// noValue matches a missing, null or empty field.
func noValue(field string) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}}}
}

// IsCanned reports whether name is a canned query.
func IsCanned(name string) bool {
	_, ok := cannedQueries[name]
	return ok
}

// CannedTitle returns the display title of a canned query ("Has Home Page").
func CannedTitle(name string) string {
	return cannedQueries[name].title
}
