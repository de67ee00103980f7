// Package tables renders dashboard lists into HTML fragments.
//
// Every function here is pure: the same inputs give the same markup, and
// every interpolated value goes through html/template, so names, emails, and
// contacts containing markup render as text.
package tables

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/clinicdash/internal/domain/models"
)

//go:embed templates/*.gohtml
var fragmentFS embed.FS

var tmpl = template.Must(template.ParseFS(fragmentFS, "templates/*.gohtml"))

// Column counts per table; an empty table renders one row spanning them all.
const (
	StaffColumns             = 4
	PatientColumns           = 6
	AppointmentColumns       = 4
	DoctorAppointmentColumns = 5
	DoctorPatientColumns     = 5
	PrescriptionColumns      = 3
)

// Placeholder is what unknown or missing values render as.
const Placeholder = "—"

// RecentActivityLimit is how many appointments the activity feed shows.
const RecentActivityLimit = 8

const noResults = "No results found."

func render(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		// Static templates and typed data; this only fires on a programming error.
		return emptyRow(1, "Unable to display this table.")
	}
	return template.HTML(buf.String())
}

type emptyData struct {
	Colspan int
	Text    string
}

func emptyRow(cols int, text string) template.HTML {
	var buf bytes.Buffer
	_ = tmpl.ExecuteTemplate(&buf, "empty_row", emptyData{Colspan: cols, Text: text})
	return template.HTML(buf.String())
}

func placeholderText(filtered bool, empty string) string {
	if filtered {
		return noResults
	}
	return empty
}

/*─────────────────────────────────────────────────────────────────────────────*
| Staff                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type staffRow struct {
	ID, Name, Email, Avatar, AvatarClass, Joined, Role string
}

// StaffRows renders doctors or receptionists. filtered selects the
// "no results" placeholder instead of "none registered".
func StaffRows(users []models.User, role string, filtered bool, loc *time.Location) template.HTML {
	if len(users) == 0 {
		return emptyRow(StaffColumns, placeholderText(filtered, "No "+strings.ToLower(role)+"s registered yet."))
	}
	rows := make([]staffRow, 0, len(users))
	for _, u := range users {
		r := u.Role
		if r == "" {
			r = role
		}
		rows = append(rows, staffRow{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Avatar:      Avatar(u.Name, r),
			AvatarClass: "avatar-" + strings.ToLower(r),
			Joined:      FormatDate(u.CreatedAt, loc),
			Role:        r,
		})
	}
	return render("staff_rows", struct{ Rows []staffRow }{rows})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Patients                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type patientRow struct {
	ID, Name, Avatar, Age, Gender, Contact, Joined string
}

func patientRows(patients []models.Patient, loc *time.Location) []patientRow {
	rows := make([]patientRow, 0, len(patients))
	for _, p := range patients {
		age := Placeholder
		if p.Age > 0 {
			age = strconv.Itoa(int(p.Age))
		}
		rows = append(rows, patientRow{
			ID:      p.ID,
			Name:    p.Name,
			Avatar:  Avatar(p.Name, models.RolePatient),
			Age:     age,
			Gender:  orPlaceholder(p.Gender),
			Contact: orPlaceholder(p.Contact.String()),
			Joined:  FormatDate(p.CreatedAt, loc),
		})
	}
	return rows
}

// PatientRows renders the admin patients table, with a change-role action.
func PatientRows(patients []models.Patient, filtered bool, loc *time.Location) template.HTML {
	if len(patients) == 0 {
		return emptyRow(PatientColumns, placeholderText(filtered, "No patients registered yet."))
	}
	return render("patient_rows", struct {
		Rows    []patientRow
		Actions bool
	}{patientRows(patients, loc), true})
}

// DoctorPatientRows renders the doctor's read-only patients table.
func DoctorPatientRows(patients []models.Patient, filtered bool, loc *time.Location) template.HTML {
	if len(patients) == 0 {
		return emptyRow(DoctorPatientColumns, placeholderText(filtered, "No patients found."))
	}
	return render("patient_rows", struct {
		Rows    []patientRow
		Actions bool
	}{patientRows(patients, loc), false})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Appointments                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type appointmentRow struct {
	ID, Patient, Doctor, Contact, Date, Status, BadgeClass string
	Options                                                []statusOption
}

type statusOption struct {
	Value    string
	Selected bool
}

// AppointmentRows renders the admin appointments table, resolving patient
// and doctor references against the loaded lists.
func AppointmentRows(appts []models.Appointment, patients []models.Patient, doctors []models.User, loc *time.Location) template.HTML {
	if len(appts) == 0 {
		return emptyRow(AppointmentColumns, "No appointments found.")
	}
	pn := PatientNames(patients)
	dn := UserNames(doctors)
	rows := make([]appointmentRow, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, appointmentRow{
			ID:         a.ID,
			Patient:    resolve(pn, a.PatientID),
			Doctor:     resolve(dn, a.DoctorID),
			Date:       FormatDate(a.Date, loc),
			Status:     StatusLabel(a.Status),
			BadgeClass: StatusBadge(a.Status),
		})
	}
	return render("appointment_rows", struct{ Rows []appointmentRow }{rows})
}

// DoctorAppointmentRows renders a doctor's appointments with a status form.
func DoctorAppointmentRows(appts []models.Appointment, patients []models.Patient, csrfToken string, loc *time.Location) template.HTML {
	if len(appts) == 0 {
		return emptyRow(DoctorAppointmentColumns, "No appointments scheduled.")
	}
	byID := make(map[string]models.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}
	rows := make([]appointmentRow, 0, len(appts))
	for _, a := range appts {
		p, found := byID[a.PatientID]
		name := resolveFallback(a.PatientID)
		contact := Placeholder
		if found {
			name = orPlaceholder(p.Name)
			contact = orPlaceholder(p.Contact.String())
		}
		current := a.EffectiveStatus()
		opts := make([]statusOption, 0, len(models.AppointmentStatuses))
		for _, s := range models.AppointmentStatuses {
			opts = append(opts, statusOption{Value: s, Selected: s == current})
		}
		rows = append(rows, appointmentRow{
			ID:         a.ID,
			Patient:    name,
			Contact:    contact,
			Date:       FormatDate(a.Date, loc),
			Status:     StatusLabel(a.Status),
			BadgeClass: StatusBadge(a.Status),
			Options:    opts,
		})
	}
	return render("doctor_appointment_rows", struct {
		Rows      []appointmentRow
		CSRFToken string
	}{rows, csrfToken})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Prescriptions                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type prescriptionRow struct {
	Patient, Content, Date string
}

// PrescriptionRows renders a doctor's prescriptions.
func PrescriptionRows(rx []models.Prescription, patients []models.Patient, loc *time.Location) template.HTML {
	if len(rx) == 0 {
		return emptyRow(PrescriptionColumns, "No prescriptions written yet.")
	}
	pn := PatientNames(patients)
	rows := make([]prescriptionRow, 0, len(rx))
	for _, p := range rx {
		rows = append(rows, prescriptionRow{
			Patient: resolve(pn, p.PatientID),
			Content: p.Content,
			Date:    FormatDate(p.CreatedAt, loc),
		})
	}
	return render("prescription_rows", struct{ Rows []prescriptionRow }{rows})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Recent activity                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type activityItem struct {
	Dot, Text, Time string
}

// RecentActivity renders the first RecentActivityLimit appointments as an
// activity feed. Input order is kept; loaders supply newest first.
func RecentActivity(appts []models.Appointment, patients []models.Patient, doctors []models.User, loc *time.Location) template.HTML {
	pn := PatientNames(patients)
	dn := UserNames(doctors)

	n := len(appts)
	if n > RecentActivityLimit {
		n = RecentActivityLimit
	}
	items := make([]activityItem, 0, n)
	for _, a := range appts[:n] {
		patient := pn[a.PatientID]
		if patient == "" {
			patient = "Patient"
		}
		doctor := dn[a.DoctorID]
		if doctor == "" {
			doctor = "Doctor"
		}
		items = append(items, activityItem{
			Dot:  ActivityDot(a.Status),
			Text: patient + " — appointment with Dr. " + doctor + " (" + StatusLabel(a.Status) + ")",
			Time: FormatDate(a.Date, loc),
		})
	}
	return render("activity", struct{ Items []activityItem }{items})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Small helpers                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// StatusBadge maps a status to its badge class.
func StatusBadge(status string) string {
	switch status {
	case models.StatusCompleted:
		return "badge-success"
	case models.StatusConfirmed:
		return "badge-info"
	default:
		return "badge-warning"
	}
}

// ActivityDot maps a status to its activity dot colour.
func ActivityDot(status string) string {
	switch status {
	case models.StatusCompleted:
		return "green"
	case models.StatusConfirmed:
		return "blue"
	default:
		return "yellow"
	}
}

// StatusLabel is the displayed status; empty reads as Pending.
func StatusLabel(status string) string {
	if status == "" {
		return models.StatusPending
	}
	return status
}

// FormatDate renders ts as "Jan 2, 2006" in loc, or Placeholder when invalid.
func FormatDate(ts models.Timestamp, loc *time.Location) string {
	t, ok := ts.In(loc)
	if !ok {
		return Placeholder
	}
	return t.Format("Jan 2, 2006")
}

// Avatar is the upper-cased first letter of name, or the role's initial.
func Avatar(name, role string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		s = role
	}
	if s == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}

// PatientNames indexes patient names by ID.
func PatientNames(patients []models.Patient) map[string]string {
	m := make(map[string]string, len(patients))
	for _, p := range patients {
		m[p.ID] = p.Name
	}
	return m
}

// UserNames indexes user names by ID.
func UserNames(users []models.User) map[string]string {
	m := make(map[string]string, len(users))
	for _, u := range users {
		m[u.ID] = u.Name
	}
	return m
}

// resolve returns the referenced name, the raw ID when unresolved, or
// Placeholder when the reference is empty.
func resolve(names map[string]string, id string) string {
	if name := names[id]; name != "" {
		return name
	}
	return resolveFallback(id)
}

func resolveFallback(id string) string {
	if id == "" {
		return Placeholder
	}
	return id
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
