// internal/domain/models/clinicsettings.go
package models

import "time"

// ClinicSettingsID is the _id of the single settings document.
const ClinicSettingsID = "clinic"

// DefaultConsultationFee is used when no fee has been saved.
const DefaultConsultationFee = 500

// ClinicSettings holds the values an administrator edits on the settings page.
type ClinicSettings struct {
	ID              string `bson:"_id" json:"id"`
	ClinicName      string `bson:"clinicName" json:"clinicName"`
	ConsultationFee *int   `bson:"consultationFee,omitempty" json:"consultationFee,omitempty"`

	UpdatedAt     *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	UpdatedByID   string     `bson:"updatedById,omitempty" json:"updatedById,omitempty"`
	UpdatedByName string     `bson:"updatedByName,omitempty" json:"updatedByName,omitempty"`
}

// DefaultClinicName is shown until an administrator names the clinic.
const DefaultClinicName = "Clinic"

// Fee returns the consultation fee, falling back to the default when none
// is stored. A stored zero is honoured.
func (s ClinicSettings) Fee() int {
	return s.FeeOr(DefaultConsultationFee)
}

// FeeOr is Fee with a caller-supplied fallback. A negative fallback is
// replaced by DefaultConsultationFee.
func (s ClinicSettings) FeeOr(def int) int {
	if s.ConsultationFee != nil && *s.ConsultationFee >= 0 {
		return *s.ConsultationFee
	}
	if def < 0 {
		return DefaultConsultationFee
	}
	return def
}
