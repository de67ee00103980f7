// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/inputval"
	"github.com/dalemusser/clinicdash/internal/app/system/limits"
	"github.com/dalemusser/clinicdash/internal/app/system/metrics"
	"github.com/dalemusser/clinicdash/internal/app/system/normalize"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type newUserVM struct {
	viewdata.BaseVM
	Role   string
	Name   string
	Email  string
	Error  string
	Cancel string
}

type reauthVM struct {
	viewdata.BaseVM
	RedirectURL string
	DelaySecs   int
}

type deleteUserVM struct {
	viewdata.BaseVM
	ID     string
	Name   string
	Email  string
	Role   string
	Cancel string
}

type createUserInput struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role" validate:"required,oneof=Doctor Receptionist"`
}

// ReauthDelaySecs is how long the interstitial shows before sign-in.
const ReauthDelaySecs = 2

// listPath is the staff list a role's actions return to.
func listPath(role string) string {
	if role == models.RoleReceptionist {
		return "/admin/receptionists"
	}
	return "/admin/doctors"
}

// staffRole canonicalizes a role from a query or form, defaulting to Doctor.
func staffRole(raw string) string {
	role := normalize.Role(raw)
	if !models.IsStaffRole(role) {
		return models.RoleDoctor
	}
	return role
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/users/new?role=                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeNewUser renders the add-staff form.
func (h *Handler) ServeNewUser(w http.ResponseWriter, r *http.Request) {
	role := staffRole(query.Get(r, "role"))
	h.renderNewUser(w, r, newUserVM{Role: role})
}

func (h *Handler) renderNewUser(w http.ResponseWriter, r *http.Request, vm newUserVM) {
	vm.BaseVM = h.base(w, r, "Add "+vm.Role, listPath(vm.Role))
	vm.Cancel = listPath(vm.Role)
	h.render(w, r, "admin_user_new", vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/users                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreateUser provisions a doctor or receptionist account.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin")
		return
	}

	in := createUserInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     normalize.Role(r.FormValue("role")),
	}
	retry := newUserVM{Role: staffRole(in.Role), Name: in.Name, Email: in.Email}

	if err := inputval.Struct(in); err != nil {
		metrics.Mutation("create_user", metrics.ResultInvalid)
		retry.Error = err.Error()
		h.renderNewUser(w, r, retry)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Accounts.Create(ctx, accounts.Request{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrDuplicateEmail):
			metrics.Mutation("create_user", metrics.ResultInvalid)
			retry.Error = "An account with that email already exists."
		case errors.Is(err, accounts.ErrInvalidRole), errors.Is(err, accounts.ErrMissingField):
			metrics.Mutation("create_user", metrics.ResultInvalid)
			retry.Error = err.Error()
		default:
			metrics.Mutation("create_user", metrics.ResultError)
			h.Log.Error("create user failed", zap.Error(err), zap.String("role", in.Role))
			retry.Error = "Error creating account: " + err.Error()
		}
		h.renderNewUser(w, r, retry)
		return
	}
	metrics.Mutation("create_user", metrics.ResultOK)
	h.Audit.UserCreated(ctx, r, actorID(r), out.User.ID, out.User.Role)

	created := notice.Notice{Kind: notice.Success, Text: out.User.Role + " account created for " + out.User.Name + "."}

	if out.ReauthRequired {
		if err := h.SessionMgr.SignOut(w, r); err != nil {
			h.Log.Warn("sign out after account creation failed", zap.Error(err))
		}
		vm := viewdata.NewBaseVM(r, h.DB, "Account created", "/login")
		vm.IsLoggedIn = false
		vm = vm.WithNotices(created, notice.Notice{Kind: notice.Info, Text: "Please sign in again to continue."})
		h.render(w, r, "admin_reauth", reauthVM{BaseVM: vm, RedirectURL: "/login", DelaySecs: ReauthDelaySecs})
		return
	}

	h.flash(w, r, created.Kind, created.Text)
	http.Redirect(w, r, listPath(out.User.Role), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /admin/users/{id}/delete                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDeleteUser renders the removal confirmation.
func (h *Handler) ServeDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	role := staffRole(query.Get(r, "role"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && u.Role != role) {
		h.ErrLog.NotFound(w, r, role+" not found.", listPath(role))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "A database error occurred.", listPath(role))
		return
	}

	h.render(w, r, "admin_user_delete", deleteUserVM{
		BaseVM: h.base(w, r, "Remove "+role, listPath(role)),
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   role,
		Cancel: listPath(role),
	})
}

// HandleDeleteUser removes the users record when confirm=yes. Only the
// record is deleted; the account's credentials elsewhere are untouched.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin")
		return
	}
	id := chi.URLParam(r, "id")
	role := staffRole(r.FormValue("role"))
	back := listPath(role)

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.Delete(ctx, id, role)
	switch {
	case err == nil:
		metrics.Mutation("delete_user", metrics.ResultOK)
		h.Log.Info("user removed", zap.String("user_id", id), zap.String("role", role))
		h.Audit.UserDeleted(ctx, r, actorID(r), id, role)
		h.flash(w, r, notice.Success, role+" removed.")
	case errors.Is(err, userstore.ErrNotFound):
		metrics.Mutation("delete_user", metrics.ResultInvalid)
		h.flash(w, r, notice.Error, role+" not found.")
	default:
		metrics.Mutation("delete_user", metrics.ResultError)
		h.Log.Error("delete user failed", zap.Error(err), zap.String("user_id", id))
		h.flash(w, r, notice.Error, "Error removing "+strings.ToLower(role)+": "+err.Error())
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
