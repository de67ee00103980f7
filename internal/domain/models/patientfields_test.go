package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func decodePatient(t *testing.T, doc bson.M) Patient {
	t.Helper()
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var p Patient
	if err := bson.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return p
}

func TestAge_UnmarshalBSONValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Age
	}{
		{"int32", int32(34), 34},
		{"int64", int64(34), 34},
		{"double", 34.0, 34},
		{"numeric string", "34", 34},
		{"padded string", " 41 ", 41},
		{"decimal string", "34.0", 34},
		{"word", "thirty", 0},
		{"empty string", "", 0},
		{"bool", true, 0},
		{"null", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decodePatient(t, bson.M{"_id": "p1", "name": "Asha", "age": tt.value})
			if p.Age != tt.want {
				t.Errorf("age: got %d, want %d", p.Age, tt.want)
			}
			if p.Name != "Asha" {
				t.Errorf("other fields lost: %+v", p)
			}
		})
	}
}

func TestContact_UnmarshalBSONValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Contact
	}{
		{"string", "555-0199", "555-0199"},
		{"int64 phone", int64(9876543210), "9876543210"},
		{"int32", int32(5550199), "5550199"},
		{"double phone", 9876543210.0, "9876543210"},
		{"document", bson.M{"phone": "1"}, ""},
		{"null", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decodePatient(t, bson.M{"_id": "p1", "contact": tt.value})
			if p.Contact != tt.want {
				t.Errorf("contact: got %q, want %q", p.Contact, tt.want)
			}
		})
	}
}

func TestPatient_RoundTripKeepsTypedFields(t *testing.T) {
	p := decodePatient(t, bson.M{"_id": "p1", "age": 29, "contact": "555"})
	raw, err := bson.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Patient
	if err := bson.Unmarshal(raw, &again); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if again.Age != 29 || again.Contact != "555" {
		t.Errorf("got %+v", again)
	}
}
