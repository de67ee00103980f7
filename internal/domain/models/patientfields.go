// internal/domain/models/patientfields.go
package models

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Age is a patient's age in years. Stored values may be a BSON integer, a
// double, or a numeric string. Anything else decodes as 0 (unknown).
type Age int

// UnmarshalBSONValue never fails; unusable values decode as 0.
func (a *Age) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	*a = 0
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bsontype.Int32:
		if n, ok := rv.Int32OK(); ok {
			*a = Age(n)
		}
	case bsontype.Int64:
		if n, ok := rv.Int64OK(); ok {
			*a = Age(n)
		}
	case bsontype.Double:
		if f, ok := rv.DoubleOK(); ok {
			*a = ageFromFloat(f)
		}
	case bsontype.String:
		if s, ok := rv.StringValueOK(); ok {
			*a = ParseAge(s)
		}
	}
	return nil
}

// ParseAge reads "34", " 34 " or "34.0". Unparseable input yields 0.
func ParseAge(s string) Age {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Age(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ageFromFloat(f)
	}
	return 0
}

func ageFromFloat(f float64) Age {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return Age(math.Round(f))
}

// Contact is a patient's phone or other contact detail. Forms may have
// stored a phone number as a number; those decode to their digits.
type Contact string

// UnmarshalBSONValue never fails; unsupported types decode as "".
func (c *Contact) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	*c = ""
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bsontype.String:
		if s, ok := rv.StringValueOK(); ok {
			*c = Contact(s)
		}
	case bsontype.Int32:
		if n, ok := rv.Int32OK(); ok {
			*c = Contact(strconv.FormatInt(int64(n), 10))
		}
	case bsontype.Int64:
		if n, ok := rv.Int64OK(); ok {
			*c = Contact(strconv.FormatInt(n, 10))
		}
	case bsontype.Double:
		if f, ok := rv.DoubleOK(); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*c = Contact(strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	return nil
}

// String returns the contact as text.
func (c Contact) String() string { return string(c) }
