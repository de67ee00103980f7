// internal/app/features/doctor/mutations.go
package doctor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	appointmentstore "github.com/dalemusser/clinicdash/internal/app/store/appointments"
	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"github.com/dalemusser/clinicdash/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clinicdash/internal/app/system/inputval"
	"github.com/dalemusser/clinicdash/internal/app/system/limits"
	"github.com/dalemusser/clinicdash/internal/app/system/metrics"
	"github.com/dalemusser/clinicdash/internal/app/system/normalize"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type prescriptionInput struct {
	PatientID string `form:"patient_id" validate:"required"`
	Content   string `form:"content" validate:"required"`
}

// returnPath keeps post-mutation redirects inside the doctor dashboard.
func returnPath(raw, def string) string {
	if raw == "/doctor" || strings.HasPrefix(raw, "/doctor/") {
		return raw
	}
	return def
}

// HandleStatus changes the status of one of the doctor's own appointments.
// POST /doctor/appointments/{id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/doctor/appointments")
		return
	}
	back := returnPath(r.FormValue("return"), "/doctor/appointments")

	id := chi.URLParam(r, "id")
	status := normalize.Status(r.FormValue("status"))
	if !models.IsValidStatus(status) {
		metrics.Mutation("update_status", metrics.ResultInvalid)
		h.flash(w, r, notice.Error, "Please choose a valid status.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	_, _, doctorID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Appointments.UpdateStatus(ctx, id, doctorID, status)
	switch {
	case err == nil:
		metrics.Mutation("update_status", metrics.ResultOK)
		h.Audit.AppointmentStatusChanged(ctx, r, doctorID, id, status)
		h.flash(w, r, notice.Success, "Appointment marked "+status+".")
	case errors.Is(err, appointmentstore.ErrNotFound):
		metrics.Mutation("update_status", metrics.ResultInvalid)
		h.flash(w, r, notice.Error, "Appointment not found.")
	default:
		metrics.Mutation("update_status", metrics.ResultError)
		h.Log.Error("update appointment status failed", zap.Error(err), zap.String("appointment_id", id))
		h.flash(w, r, notice.Error, "Error updating appointment: "+err.Error())
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleCreatePrescription stores a prescription written by the doctor.
// Markup is stripped from the content before it is saved.
// POST /doctor/prescriptions
func (h *Handler) HandleCreatePrescription(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/doctor/prescriptions")
		return
	}

	in := prescriptionInput{
		PatientID: strings.TrimSpace(r.FormValue("patient_id")),
		Content:   htmlsanitize.StripTags(r.FormValue("content")),
	}
	if err := inputval.Struct(in); err != nil {
		metrics.Mutation("create_prescription", metrics.ResultInvalid)
		h.renderPrescriptions(w, r, prescriptionsVM{Content: in.Content, Error: err.Error()}, in.PatientID)
		return
	}

	_, _, doctorID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rx, err := h.Prescriptions.Create(ctx, models.Prescription{
		PatientID: in.PatientID,
		DoctorID:  doctorID,
		Content:   in.Content,
	})
	if err != nil {
		metrics.Mutation("create_prescription", metrics.ResultError)
		h.Log.Error("create prescription failed", zap.Error(err), zap.String("patient_id", in.PatientID))
		h.renderPrescriptions(w, r, prescriptionsVM{Content: in.Content, Error: "Error saving prescription: " + err.Error()}, in.PatientID)
		return
	}

	metrics.Mutation("create_prescription", metrics.ResultOK)
	h.Audit.PrescriptionCreated(ctx, r, doctorID, rx.PatientID, rx.ID)
	h.flash(w, r, notice.Success, "Prescription saved.")
	http.Redirect(w, r, "/doctor/prescriptions", http.StatusSeeOther)
}
