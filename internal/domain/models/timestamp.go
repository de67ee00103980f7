// internal/domain/models/timestamp.go
package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Timestamp is a point in time read from a document that may have been
// written by several clients. Stored values can be a BSON datetime, a BSON
// timestamp, a string, a millisecond epoch number, or a {seconds, nanoseconds}
// sub-document. Anything else decodes to an invalid Timestamp.
//
// Strings without a zone ("2024-03-01", "2024-03-01T09:30") are floating:
// their wall clock is interpreted in whatever location the caller asks for.
type Timestamp struct {
	t        time.Time
	valid    bool
	floating bool
}

// NewTimestamp wraps t. The zero time yields an invalid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{t: t, valid: true}
}

// Valid reports whether the Timestamp holds a usable time.
func (ts Timestamp) Valid() bool { return ts.valid }

// In returns the time in loc. ok is false for invalid timestamps.
func (ts Timestamp) In(loc *time.Location) (t time.Time, ok bool) {
	if !ts.valid {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if ts.floating {
		y, m, d := ts.t.Date()
		hh, mm, ss := ts.t.Clock()
		return time.Date(y, m, d, hh, mm, ss, ts.t.Nanosecond(), loc), true
	}
	return ts.t.In(loc), true
}

// DateKey returns the calendar date ("2006-01-02") of the timestamp in loc.
func (ts Timestamp) DateKey(loc *time.Location) (string, bool) {
	t, ok := ts.In(loc)
	if !ok {
		return "", false
	}
	return t.Format(DateKeyLayout), true
}

// SortNewestFirst orders items by the timestamp at returns, newest first,
// with invalid timestamps last. Equal timestamps keep their input order.
// Stored dates mix BSON types, so a database sort cannot order them.
func SortNewestFirst[T any](items []T, at func(T) Timestamp) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := at(items[i]).In(time.UTC)
		tj, jok := at(items[j]).In(time.UTC)
		if iok != jok {
			return iok
		}
		return iok && ti.After(tj)
	})
}

// DateKeyLayout formats calendar-date bucket keys.
const DateKeyLayout = "2006-01-02"

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

var floatingLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateKeyLayout,
}

// ParseTimestamp parses the string forms a stored date may take.
// Unparseable input yields an invalid Timestamp.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t, valid: true}
		}
	}
	for _, layout := range floatingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t, valid: true, floating: true}
		}
	}
	return Timestamp{}
}

func fromEpochMillis(ms float64) Timestamp {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Timestamp{}
	}
	sec, frac := math.Modf(ms / 1000)
	return NewTimestamp(time.Unix(int64(sec), int64(frac*1e9)).UTC())
}

// MarshalBSONValue writes a BSON datetime, or null when invalid.
func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !ts.valid {
		return bsontype.Null, nil, nil
	}
	t, _ := ts.In(time.UTC)
	return bson.MarshalValue(t)
}

// UnmarshalBSONValue accepts every stored representation described on
// Timestamp. It never fails on unexpected types; those decode as invalid.
func (ts *Timestamp) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	*ts = Timestamp{}
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bsontype.DateTime:
		if ms, ok := rv.DateTimeOK(); ok {
			*ts = NewTimestamp(time.UnixMilli(ms).UTC())
		}
	case bsontype.Timestamp:
		if sec, _, ok := rv.TimestampOK(); ok {
			*ts = NewTimestamp(time.Unix(int64(sec), 0).UTC())
		}
	case bsontype.String:
		if s, ok := rv.StringValueOK(); ok {
			*ts = ParseTimestamp(s)
		}
	case bsontype.Int32:
		if n, ok := rv.Int32OK(); ok {
			*ts = fromEpochMillis(float64(n))
		}
	case bsontype.Int64:
		if n, ok := rv.Int64OK(); ok {
			*ts = fromEpochMillis(float64(n))
		}
	case bsontype.Double:
		if f, ok := rv.DoubleOK(); ok {
			*ts = fromEpochMillis(f)
		}
	case bsontype.EmbeddedDocument:
		doc, ok := rv.DocumentOK()
		if !ok {
			return nil
		}
		*ts = fromSecondsDoc(doc)
	}
	return nil
}

// fromSecondsDoc decodes {seconds, nanoseconds} (or the underscored export
// form {_seconds, _nanoseconds}).
func fromSecondsDoc(doc bson.Raw) Timestamp {
	sec, ok := numberField(doc, "seconds", "_seconds")
	if !ok {
		return Timestamp{}
	}
	nanos, _ := numberField(doc, "nanoseconds", "_nanoseconds")
	return NewTimestamp(time.Unix(int64(sec), int64(nanos)).UTC())
}

func numberField(doc bson.Raw, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, err := doc.LookupErr(k)
		if err != nil {
			continue
		}
		switch v.Type {
		case bsontype.Int32:
			return float64(v.Int32()), true
		case bsontype.Int64:
			return float64(v.Int64()), true
		case bsontype.Double:
			return v.Double(), true
		}
	}
	return 0, false
}

// String formats the timestamp for logs.
func (ts Timestamp) String() string {
	if !ts.valid {
		return "invalid"
	}
	if ts.floating {
		return fmt.Sprintf("%s (floating)", ts.t.Format("2006-01-02T15:04:05"))
	}
	return ts.t.Format(time.RFC3339)
}

// MarshalJSON writes an RFC 3339 string, or null when invalid.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	t, _ := ts.In(time.UTC)
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
