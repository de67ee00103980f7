// internal/app/features/admin/settings.go
package admin

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"github.com/dalemusser/clinicdash/internal/app/system/inputval"
	"github.com/dalemusser/clinicdash/internal/app/system/limits"
	"github.com/dalemusser/clinicdash/internal/app/system/metrics"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.uber.org/zap"
)

type settingsVM struct {
	viewdata.BaseVM
	ClinicName string
	Fee        string
	Error      string
}

type settingsInput struct {
	ClinicName string `form:"clinic_name" validate:"required"`
	Fee        *int   `form:"consultation_fee" validate:"omitempty,gte=0"`
}

// ServeSettings renders the clinic settings form.
// GET /admin/settings
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load settings failed", err, "Failed to load settings.", "/admin")
		return
	}

	h.render(w, r, "admin_settings", settingsVM{
		BaseVM:     h.base(w, r, "Settings", "/admin"),
		ClinicName: settings.ClinicName,
		Fee:        strconv.Itoa(settings.FeeOr(h.DefaultFee)),
	})
}

// HandleSettings saves the clinic name and consultation fee. A blank fee
// clears the stored value so the default applies.
// POST /admin/settings
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/settings")
		return
	}

	name := strings.TrimSpace(r.FormValue("clinic_name"))
	rawFee := strings.TrimSpace(r.FormValue("consultation_fee"))
	retry := settingsVM{ClinicName: name, Fee: rawFee}

	in := settingsInput{ClinicName: name}
	if rawFee != "" {
		fee, err := strconv.Atoi(rawFee)
		if err != nil {
			metrics.Mutation("save_settings", metrics.ResultInvalid)
			retry.Error = "consultation_fee must be a whole number"
			h.renderSettings(w, r, retry)
			return
		}
		in.Fee = &fee
	}
	if err := inputval.Struct(in); err != nil {
		metrics.Mutation("save_settings", metrics.ResultInvalid)
		retry.Error = err.Error()
		h.renderSettings(w, r, retry)
		return
	}

	_, userName, userID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Settings.Save(ctx, models.ClinicSettings{
		ID:              models.ClinicSettingsID,
		ClinicName:      in.ClinicName,
		ConsultationFee: in.Fee,
		UpdatedByID:     userID,
		UpdatedByName:   userName,
	})
	if err != nil {
		metrics.Mutation("save_settings", metrics.ResultError)
		h.Log.Error("save settings failed", zap.Error(err))
		retry.Error = "Error saving settings: " + err.Error()
		h.renderSettings(w, r, retry)
		return
	}

	metrics.Mutation("save_settings", metrics.ResultOK)
	h.Audit.SettingsSaved(ctx, r, userID, in.ClinicName, in.Fee)
	h.flash(w, r, notice.Success, "Settings saved.")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, vm settingsVM) {
	vm.BaseVM = h.base(w, r, "Settings", "/admin")
	h.render(w, r, "admin_settings", vm)
}
