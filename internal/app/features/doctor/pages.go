// internal/app/features/doctor/pages.go
package doctor

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"github.com/dalemusser/clinicdash/internal/app/system/clinicstats"
	"github.com/dalemusser/clinicdash/internal/app/system/tables"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type overviewVM struct {
	viewdata.BaseVM
	Stats         clinicstats.DoctorOverview
	Today         template.HTML
	Prescriptions template.HTML
}

type appointmentsVM struct {
	viewdata.BaseVM
	Total int
	Rows  template.HTML
}

type patientsVM struct {
	viewdata.BaseVM
	Total  int
	Shown  int
	Search viewdata.SearchBox
	Rows   template.HTML
}

type patientOption struct {
	ID       string
	Name     string
	Selected bool
}

type prescriptionsVM struct {
	viewdata.BaseVM
	Rows     template.HTML
	Patients []patientOption
	Content  string
	Error    string
}

// recentPrescriptions is how many prescriptions the overview lists.
const recentPrescriptions = 5

// ServeOverview renders the doctor's stat cards, today's appointments, and
// latest prescriptions.
// GET /doctor
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	_, _, doctorID, _ := authz.UserCtx(r)
	snap := h.Loader.LoadDoctor(r.Context(), doctorID)
	now := h.now()

	vm := overviewVM{
		BaseVM: h.base(w, r, "Doctor Dashboard", snap.Notices...),
		Stats:  clinicstats.BuildDoctorOverview(snap, now, h.Loc),
	}
	vm.Today = tables.DoctorAppointmentRows(clinicstats.TodayAppointments(snap.Appointments, now, h.Loc), snap.Patients, vm.CSRFToken, h.Loc)

	rx := snap.Prescriptions
	if len(rx) > recentPrescriptions {
		rx = rx[:recentPrescriptions]
	}
	vm.Prescriptions = tables.PrescriptionRows(rx, snap.Patients, h.Loc)

	h.render(w, r, "doctor_overview", vm)
}

// ServeAppointments lists the doctor's appointments with status controls.
// GET /doctor/appointments
func (h *Handler) ServeAppointments(w http.ResponseWriter, r *http.Request) {
	_, _, doctorID, _ := authz.UserCtx(r)
	snap := h.Loader.LoadDoctor(r.Context(), doctorID)

	vm := appointmentsVM{
		BaseVM: h.base(w, r, "My Appointments", snap.Notices...),
		Total:  len(snap.Appointments),
	}
	vm.Rows = tables.DoctorAppointmentRows(snap.Appointments, snap.Patients, vm.CSRFToken, h.Loc)
	h.render(w, r, "doctor_appointments", vm)
}

// ServePatients lists every patient, filtered by ?q= over name and contact.
// GET /doctor/patients
func (h *Handler) ServePatients(w http.ResponseWriter, r *http.Request) {
	_, _, doctorID, _ := authz.UserCtx(r)
	snap := h.Loader.LoadDoctor(r.Context(), doctorID)

	q := query.Get(r, "q")
	shown := tables.FilterPatients(snap.Patients, q)
	rows := tables.DoctorPatientRows(shown, strings.TrimSpace(q) != "", h.Loc)

	if viewdata.IsPartial(r, "patients-tbody") {
		viewdata.WriteFragment(w, rows)
		return
	}

	h.render(w, r, "doctor_patients", patientsVM{
		BaseVM: h.base(w, r, "Patients", snap.Notices...),
		Total:  len(snap.Patients),
		Shown:  len(shown),
		Search: viewdata.SearchBox{
			Action:      "/doctor/patients",
			Target:      "patients-tbody",
			Query:       q,
			Placeholder: "Search patients by name or contact",
		},
		Rows: rows,
	})
}

// ServePrescriptions lists the doctor's prescriptions under the
// write-prescription form.
// GET /doctor/prescriptions
func (h *Handler) ServePrescriptions(w http.ResponseWriter, r *http.Request) {
	h.renderPrescriptions(w, r, prescriptionsVM{}, query.Get(r, "patient"))
}

func (h *Handler) renderPrescriptions(w http.ResponseWriter, r *http.Request, vm prescriptionsVM, selected string) {
	_, _, doctorID, _ := authz.UserCtx(r)
	snap := h.Loader.LoadDoctor(r.Context(), doctorID)

	vm.BaseVM = h.base(w, r, "Prescriptions", snap.Notices...)
	vm.Rows = tables.PrescriptionRows(snap.Prescriptions, snap.Patients, h.Loc)
	vm.Patients = patientOptions(snap.Patients, selected)
	h.render(w, r, "doctor_prescriptions", vm)
}

func patientOptions(patients []models.Patient, selected string) []patientOption {
	out := make([]patientOption, 0, len(patients))
	for _, p := range patients {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		out = append(out, patientOption{ID: p.ID, Name: name, Selected: p.ID == selected})
	}
	return out
}
