// internal/app/features/doctor/handler.go
package doctor

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/clinicdash/internal/app/features/errors"
	appointmentstore "github.com/dalemusser/clinicdash/internal/app/store/appointments"
	prescriptionstore "github.com/dalemusser/clinicdash/internal/app/store/prescriptions"
	"github.com/dalemusser/clinicdash/internal/app/system/auditlog"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the doctor dashboard. Every list is scoped to the signed-in
// doctor except patients, which doctors see in full.
type Handler struct {
	DB            *mongo.Database
	Appointments  *appointmentstore.Store
	Prescriptions *prescriptionstore.Store
	Loader        *snapshot.Loader
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Audit         *auditlog.Logger
	Log           *zap.Logger
	Loc           *time.Location

	now    func() time.Time
	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs a doctor Handler.
func NewHandler(db *mongo.Database, loader *snapshot.Loader, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:            db,
		Appointments:  appointmentstore.New(db),
		Prescriptions: prescriptionstore.New(db),
		Loader:        loader,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Audit:         audit,
		Log:           logger,
		Loc:           loc,
		now:           time.Now,
		render:        templates.Render,
	}
}

func (h *Handler) base(w http.ResponseWriter, r *http.Request, title string, loaderNotices ...notice.Notice) viewdata.BaseVM {
	vm := viewdata.NewBaseVM(r, h.DB, title, "/doctor")
	vm = vm.WithNotices(notice.Pop(w, r, h.SessionMgr)...)
	return vm.WithNotices(loaderNotices...)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, text string) {
	if err := notice.Push(w, r, h.SessionMgr, notice.Notice{Kind: kind, Text: text}); err != nil {
		h.Log.Warn("store notice failed", zap.Error(err))
	}
}
