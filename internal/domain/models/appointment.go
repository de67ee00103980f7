// internal/domain/models/appointment.go
package models

// Appointment statuses. A missing status is treated as pending.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
)

// AppointmentStatuses lists the statuses in workflow order.
var AppointmentStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted}

// Appointment links a patient and a doctor at a point in time.
// PatientID and DoctorID are plain references; nothing enforces that the
// referenced records exist.
type Appointment struct {
	ID        string    `bson:"_id" json:"id"`
	PatientID string    `bson:"patientId" json:"patientId"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	Date      Timestamp `bson:"date" json:"date"`
	Status    string    `bson:"status,omitempty" json:"status,omitempty"`
}

// EffectiveStatus returns the status, defaulting to pending when unset.
func (a Appointment) EffectiveStatus() string {
	if a.Status == "" {
		return StatusPending
	}
	return a.Status
}

// IsValidStatus reports whether s is a known appointment status.
func IsValidStatus(s string) bool {
	for _, st := range AppointmentStatuses {
		if st == s {
			return true
		}
	}
	return false
}
