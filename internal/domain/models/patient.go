// internal/domain/models/patient.go
package models

// Patient is a clinic patient. Email links the record to an account, when
// the patient has one.
type Patient struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Age       Age       `bson:"age,omitempty" json:"age,omitempty"`
	Gender    string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Contact   Contact   `bson:"contact,omitempty" json:"contact,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt Timestamp `bson:"createdAt" json:"createdAt"`
}
