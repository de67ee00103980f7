// internal/app/features/admin/lists.go
package admin

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/app/system/tables"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type staffListVM struct {
	viewdata.BaseVM
	Role   string // Doctor | Receptionist
	Plural string // doctors | receptionists
	Total  int
	Shown  int
	Search viewdata.SearchBox
	Rows   template.HTML
}

type patientListVM struct {
	viewdata.BaseVM
	Total  int
	Shown  int
	Search viewdata.SearchBox
	Rows   template.HTML
}

type appointmentListVM struct {
	viewdata.BaseVM
	Total int
	Rows  template.HTML
}

// ServeDoctors lists doctors, filtered by ?q= over name and email.
// GET /admin/doctors
func (h *Handler) ServeDoctors(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.LoadAdmin(r.Context(), snapshot.EntityDoctors)
	h.serveStaff(w, r, models.RoleDoctor, snap.Doctors, snap.Notices)
}

// ServeReceptionists lists receptionists, filtered by ?q= over name and email.
// GET /admin/receptionists
func (h *Handler) ServeReceptionists(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.LoadAdmin(r.Context(), snapshot.EntityReceptionists)
	h.serveStaff(w, r, models.RoleReceptionist, snap.Receptionists, snap.Notices)
}

func (h *Handler) serveStaff(w http.ResponseWriter, r *http.Request, role string, all []models.User, loaderNotices []notice.Notice) {
	plural := strings.ToLower(role) + "s"
	q := query.Get(r, "q")
	shown := tables.FilterUsers(all, q)
	rows := tables.StaffRows(shown, role, strings.TrimSpace(q) != "", h.Loc)

	target := plural + "-tbody"
	if viewdata.IsPartial(r, target) {
		viewdata.WriteFragment(w, rows)
		return
	}

	h.render(w, r, "admin_staff_list", staffListVM{
		BaseVM: h.base(w, r, strings.ToUpper(plural[:1])+plural[1:], "/admin", loaderNotices...),
		Role:   role,
		Plural: plural,
		Total:  len(all),
		Shown:  len(shown),
		Search: viewdata.SearchBox{
			Action:      "/admin/" + plural,
			Target:      target,
			Query:       q,
			Placeholder: "Search " + plural + " by name or email",
		},
		Rows: rows,
	})
}

// ServePatients lists patients, filtered by ?q= over name and contact.
// GET /admin/patients
func (h *Handler) ServePatients(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.LoadAdmin(r.Context(), snapshot.EntityPatients)
	q := query.Get(r, "q")
	shown := tables.FilterPatients(snap.Patients, q)
	rows := tables.PatientRows(shown, strings.TrimSpace(q) != "", h.Loc)

	if viewdata.IsPartial(r, "patients-tbody") {
		viewdata.WriteFragment(w, rows)
		return
	}

	h.render(w, r, "admin_patients", patientListVM{
		BaseVM: h.base(w, r, "Patients", "/admin", snap.Notices...),
		Total:  len(snap.Patients),
		Shown:  len(shown),
		Search: viewdata.SearchBox{
			Action:      "/admin/patients",
			Target:      "patients-tbody",
			Query:       q,
			Placeholder: "Search patients by name or contact",
		},
		Rows: rows,
	})
}

// ServeAppointments lists every appointment, newest first.
// GET /admin/appointments
func (h *Handler) ServeAppointments(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.LoadAdmin(r.Context(), snapshot.EntityAppointments, snapshot.EntityPatients, snapshot.EntityDoctors)
	h.render(w, r, "admin_appointments", appointmentListVM{
		BaseVM: h.base(w, r, "Appointments", "/admin", snap.Notices...),
		Total:  len(snap.Appointments),
		Rows:   tables.AppointmentRows(snap.Appointments, snap.Patients, snap.Doctors, h.Loc),
	})
}
