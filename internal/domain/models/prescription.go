// internal/domain/models/prescription.go
package models

// Prescription is free-text content a doctor wrote for a patient.
type Prescription struct {
	ID        string    `bson:"_id" json:"id"`
	PatientID string    `bson:"patientId" json:"patientId"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt Timestamp `bson:"createdAt" json:"createdAt"`
}
