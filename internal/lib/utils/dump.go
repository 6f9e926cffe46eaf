package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dumpIndent = "    "

// RawDump renders a stored document as indented JSON for display.
//
// Field order is kept. Dates become "YYYY-MM-DD HH:MM:SS" (with
// ".ffffff" when they carry a fraction) in UTC, object ids become their
// hex string and any other non-JSON value its string form.
func RawDump(raw bson.Raw) (string, error) {
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decoding document: %w", err)
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, doc, 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatDumpTime formats t the way RawDump prints dates.
func FormatDumpTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format("2006-01-02 15:04:05")
}

func writeValue(buf *bytes.Buffer, v interface{}, depth int) error {
	switch val := v.(type) {
	case bson.D:
		return writeDocument(buf, val, depth)
	case bson.M:
		doc := make(bson.D, 0, len(val))
		for k, e := range val {
			doc = append(doc, bson.E{Key: k, Value: e})
		}
		return writeDocument(buf, doc, depth)
	case bson.A:
		return writeArray(buf, val, depth)
	case primitive.DateTime:
		return writeScalar(buf, FormatDumpTime(val.Time()))
	case time.Time:
		return writeScalar(buf, FormatDumpTime(val))
	case primitive.ObjectID:
		return writeScalar(buf, val.Hex())
	case nil, string, bool, int32, int64, float64:
		return writeScalar(buf, val)
	default:
		return writeScalar(buf, fmt.Sprint(val))
	}
}

func writeDocument(buf *bytes.Buffer, doc bson.D, depth int) error {
	if len(doc) == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteString("{\n")
	for i, e := range doc {
		buf.WriteString(strings.Repeat(dumpIndent, depth+1))
		if err := writeScalar(buf, e.Key); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := writeValue(buf, e.Value, depth+1); err != nil {
			return err
		}
		if i < len(doc)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(dumpIndent, depth))
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr bson.A, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteString("[\n")
	for i, item := range arr {
		buf.WriteString(strings.Repeat(dumpIndent, depth+1))
		if err := writeValue(buf, item, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(dumpIndent, depth))
	buf.WriteByte(']')
	return nil
}

func writeScalar(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
