package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilter_ZeroValueMatchesAll(t *testing.T) {
	var f Filter
	assert.Equal(t, KindAll, f.Kind())
	assert.Empty(t, f.Document())
	assert.Equal(t, All(), f)
}

func TestFilter_Keyword(t *testing.T) {
	f := Keyword("flask")
	assert.Equal(t, KindKeyword, f.Kind())
	assert.Equal(t, bson.D{{Key: "split_keywords", Value: "flask"}}, f.Document())
}

func TestFilter_Author(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "author", Value: "Jane Doe"}}, Author("Jane Doe").Document())
}

func TestFilter_SearchIsLiteralAndCaseInsensitive(t *testing.T) {
	doc := Search("Py.Test+").Document()
	require.Len(t, doc, 1)
	assert.Equal(t, "$or", doc[0].Key)

	clauses, ok := doc[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 2)

	name := clauses[0].(bson.D)
	assert.Equal(t, "name", name[0].Key)
	assert.Equal(t, primitive.Regex{Pattern: `Py\.Test\+`, Options: "i"}, name[0].Value)

	keywords := clauses[1].(bson.D)
	assert.Equal(t, bson.D{{Key: "split_keywords", Value: "py.test+"}}, keywords)
}

func TestFilter_License(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		assert.Equal(t, bson.D{{Key: "license", Value: "MIT"}}, License("MIT", 50).Document())
	})

	t.Run("none matches null or missing", func(t *testing.T) {
		assert.Equal(t, bson.D{{Key: "license", Value: nil}}, License(LicenseNone, 50).Document())
	})

	t.Run("empty requires the field", func(t *testing.T) {
		doc := License(LicenseEmpty, 50).Document()
		cond := doc[0].Value.(bson.D)
		assert.Equal(t, bson.D{{Key: "$exists", Value: true}, {Key: "$eq", Value: ""}}, cond)
	})

	t.Run("long uses a length above the maximum", func(t *testing.T) {
		doc := License(LicenseLong, 50).Document()
		cond := doc[0].Value.(bson.D)
		require.Len(t, cond, 2)
		assert.Equal(t, bson.E{Key: "$exists", Value: true}, cond[0])
		assert.Equal(t, primitive.Regex{Pattern: `^[\s\S]{51}`}, cond[1].Value)
	})
}

func TestCanned(t *testing.T) {
	for _, name := range CannedNames {
		t.Run(name, func(t *testing.T) {
			f, ok := Canned(name)
			require.True(t, ok)
			assert.Equal(t, KindCanned, f.Kind())
			assert.NotEmpty(t, f.Document())
			assert.NotEmpty(t, CannedTitle(name))
		})
	}

	_, ok := Canned("has_everything")
	assert.False(t, ok)
	assert.False(t, IsCanned("has-license"))
}

func TestCannedTitle(t *testing.T) {
	assert.Equal(t, "Has Home Page", CannedTitle("has_home_page"))
	assert.Equal(t, "No License", CannedTitle("no_license"))
	assert.Equal(t, "", CannedTitle("unknown"))
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "all", All().String())
	assert.Equal(t, `keyword="web"`, Keyword("web").String())
}
