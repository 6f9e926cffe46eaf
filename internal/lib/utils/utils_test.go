package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestGravatar(t *testing.T) {
	// md5("foo@bar.com")
	const want = "f3ada405ce890b6f8204094deb12d8a8"

	got, err := Gravatar(strPtr("  Foo@Bar.COM \n"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Gravatar(nil)
	assert.ErrorIs(t, err, ErrNoEmail)

	_, err = Gravatar(strPtr("   "))
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestFormatDumpTime(t *testing.T) {
	whole := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)
	assert.Equal(t, "2024-03-01 12:30:05", FormatDumpTime(whole))

	fraction := time.Date(2024, 3, 1, 12, 30, 5, 123000000, time.UTC)
	assert.Equal(t, "2024-03-01 12:30:05.123000", FormatDumpTime(fraction))
}

func TestRawDump(t *testing.T) {
	id, err := primitive.ObjectIDFromHex("65e1c0ffee0000000000abcd")
	require.NoError(t, err)

	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Flask"},
		{Key: "upload_time", Value: primitive.NewDateTimeFromTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))},
		{Key: "license", Value: nil},
		{Key: "split_keywords", Value: bson.A{"web", "<wsgi>"}},
		{Key: "urls", Value: bson.A{}},
		{Key: "info", Value: bson.D{{Key: "downloads", Value: int32(3)}}},
	})
	require.NoError(t, err)

	got, err := RawDump(raw)
	require.NoError(t, err)

	want := `{
    "_id": "65e1c0ffee0000000000abcd",
    "name": "Flask",
    "upload_time": "2024-03-01 12:00:00",
    "license": null,
    "split_keywords": [
        "web",
        "<wsgi>"
    ],
    "urls": [],
    "info": {
        "downloads": 3
    }
}`
	assert.Equal(t, want, got)
}
