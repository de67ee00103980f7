// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	ID         string
	When       string
	Category   string
	EventType  string
	ActorName  string // resolved from ActorID
	TargetName string // resolved from UserID (staff account or patient)
	IP         string
	Success    bool
	Reason     string
	Details    map[string]string
}

// listData is the view model for the audit log page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
		{Value: audit.CategoryClinical, Label: "Clinical"},
	}
}

// eventTypesForCategory returns the event types for a category, every event
// type when category is empty, and nil for an unknown category.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}
	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserDeleted,
		audit.EventRoleChanged,
		audit.EventSettingsSaved,
	}
	clinicalEvents := []string{
		audit.EventAppointmentStatusChanged,
		audit.EventPrescriptionCreated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryClinical:
		return clinicalEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents)+len(clinicalEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return append(all, clinicalEvents...)
	default:
		return nil
	}
}
