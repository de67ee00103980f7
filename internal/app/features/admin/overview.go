// internal/app/features/admin/overview.go
package admin

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/clinicdash/internal/app/system/clinicstats"
	"github.com/dalemusser/clinicdash/internal/app/system/tables"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.uber.org/zap"
)

type overviewVM struct {
	viewdata.BaseVM
	Stats         clinicstats.Overview
	SeriesChart   clinicstats.Chart
	GenderChart   clinicstats.Chart
	Genders       clinicstats.Genders
	Activity      template.HTML
	RecentDoctors template.HTML
}

// ServeOverview renders the stat cards, charts, and recent activity.
// GET /admin
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.LoadAdmin(r.Context())
	now := h.now()

	stats := clinicstats.BuildOverview(snap, h.fee(r.Context()), now, h.Loc)
	genders := clinicstats.GenderBreakdown(snap.Patients)

	recent := snap.Doctors
	if len(recent) > 5 {
		recent = recent[:5]
	}

	h.render(w, r, "admin_overview", overviewVM{
		BaseVM:        h.base(w, r, "Dashboard Overview", "/admin", snap.Notices...),
		Stats:         stats,
		SeriesChart:   clinicstats.SeriesChart(clinicstats.TrailingSeries(snap.Appointments, now, h.Loc)),
		GenderChart:   clinicstats.GenderChart(genders),
		Genders:       genders,
		Activity:      tables.RecentActivity(snap.Appointments, snap.Patients, snap.Doctors, h.Loc),
		RecentDoctors: tables.StaffRows(recent, models.RoleDoctor, false, h.Loc),
	})
}

// fee returns the configured consultation fee. A settings read failure is
// logged and the default fee used.
func (h *Handler) fee(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	settings, err := h.Settings.Get(ctx)
	if err != nil {
		h.Log.Warn("load clinic settings failed; using default fee", zap.Error(err))
	}
	return settings.FeeOr(h.DefaultFee)
}
