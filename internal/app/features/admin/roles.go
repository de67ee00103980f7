// internal/app/features/admin/roles.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	patientstore "github.com/dalemusser/clinicdash/internal/app/store/patients"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/limits"
	"github.com/dalemusser/clinicdash/internal/app/system/metrics"
	"github.com/dalemusser/clinicdash/internal/app/system/normalize"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type changeRoleVM struct {
	viewdata.BaseVM
	ID      string
	Name    string
	Email   string
	Current string
	Roles   []string
	Error   string
}

// ServeChangeRole renders the role picker for a patient record.
// GET /admin/patients/{id}/role
func (h *Handler) ServeChangeRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Patients.GetByID(ctx, id)
	if errors.Is(err, patientstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, "Patient not found.", "/admin/patients")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load patient failed", err, "A database error occurred.", "/admin/patients")
		return
	}

	current := models.RolePatient
	if u, err := h.Users.GetByID(ctx, id); err == nil && u.Role != "" {
		current = u.Role
	}

	h.render(w, r, "admin_change_role", changeRoleVM{
		BaseVM:  h.base(w, r, "Change Role", "/admin/patients"),
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Current: current,
		Roles:   models.AssignableRoles,
	})
}

// HandleChangeRole writes the chosen role into users/{id}, merging with any
// existing record. The patient record stays where it is.
// POST /admin/patients/{id}/role
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/patients")
		return
	}
	id := chi.URLParam(r, "id")
	role := normalize.Role(r.FormValue("role"))
	if !models.IsValidRole(role) {
		metrics.Mutation("change_role", metrics.ResultInvalid)
		h.flash(w, r, notice.Error, "Please choose a valid role.")
		http.Redirect(w, r, "/admin/patients", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// The patient record supplies the display name; the submitted value is
	// the fallback for records that have since disappeared.
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	p, err := h.Patients.GetByID(ctx, id)
	switch {
	case err == nil:
		if p.Name != "" {
			name = p.Name
		}
		if p.Email != "" {
			email = p.Email
		}
	case errors.Is(err, patientstore.ErrNotFound):
	default:
		h.Log.Warn("load patient for role change failed", zap.Error(err), zap.String("patient_id", id))
	}

	err = h.Users.UpsertRole(ctx, userstore.RoleChange{ID: id, Name: name, Email: email, Role: role})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			metrics.Mutation("change_role", metrics.ResultInvalid)
			h.flash(w, r, notice.Error, "Error updating role: that email already belongs to another account.")
		} else {
			metrics.Mutation("change_role", metrics.ResultError)
			h.Log.Error("change role failed", zap.Error(err), zap.String("user_id", id), zap.String("role", role))
			h.flash(w, r, notice.Error, "Error updating role: "+err.Error())
		}
		http.Redirect(w, r, "/admin/patients", http.StatusSeeOther)
		return
	}

	metrics.Mutation("change_role", metrics.ResultOK)
	h.Log.Info("role changed", zap.String("user_id", id), zap.String("role", role))
	h.Audit.RoleChanged(ctx, r, actorID(r), id, role)
	display := name
	if display == "" {
		display = "User"
	}
	h.flash(w, r, notice.Success, display+" is now "+role+".")
	http.Redirect(w, r, "/admin/patients", http.StatusSeeOther)
}
