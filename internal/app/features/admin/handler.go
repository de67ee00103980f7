// internal/app/features/admin/handler.go
package admin

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/clinicdash/internal/app/features/errors"
	patientstore "github.com/dalemusser/clinicdash/internal/app/store/patients"
	settingsstore "github.com/dalemusser/clinicdash/internal/app/store/settings"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/auditlog"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/authz"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the administrator dashboard: overview, staff and patient
// lists, account creation and removal, role changes, and clinic settings.
type Handler struct {
	DB         *mongo.Database
	Users      *userstore.Store
	Patients   *patientstore.Store
	Settings   *settingsstore.Store
	Loader     *snapshot.Loader
	Accounts   *accounts.Provisioner
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Audit      *auditlog.Logger
	Log        *zap.Logger

	// Loc is the clinic's time zone for calendar bucketing and dates.
	Loc *time.Location
	// DefaultFee applies when no consultation fee has been saved.
	DefaultFee int

	now    func() time.Time
	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs an admin Handler.
func NewHandler(
	db *mongo.Database,
	loader *snapshot.Loader,
	prov *accounts.Provisioner,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	loc *time.Location,
	defaultFee int,
	logger *zap.Logger,
) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:         db,
		Users:      userstore.New(db),
		Patients:   patientstore.New(db),
		Settings:   settingsstore.New(db),
		Loader:     loader,
		Accounts:   prov,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Audit:      audit,
		Log:        logger,
		Loc:        loc,
		DefaultFee: defaultFee,
		now:        time.Now,
		render:     templates.Render,
	}
}

// base builds the shared view model and attaches pending notices plus any
// raised by the loaders for this render.
func (h *Handler) base(w http.ResponseWriter, r *http.Request, title, backDefault string, loaderNotices ...notice.Notice) viewdata.BaseVM {
	vm := viewdata.NewBaseVM(r, h.DB, title, backDefault)
	vm = vm.WithNotices(notice.Pop(w, r, h.SessionMgr)...)
	return vm.WithNotices(loaderNotices...)
}

// flash stores a notice for the page the client is redirected to.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, text string) {
	if err := notice.Push(w, r, h.SessionMgr, notice.Notice{Kind: kind, Text: text}); err != nil {
		h.Log.Warn("store notice failed", zap.Error(err))
	}
}

// actorID is the signed-in admin's id, recorded on audit events.
func actorID(r *http.Request) string {
	_, _, id, _ := authz.UserCtx(r)
	return id
}
