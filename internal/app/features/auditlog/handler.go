// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/clinicdash/internal/app/features/errors"
	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	patientstore "github.com/dalemusser/clinicdash/internal/app/store/patients"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the administrator's view of the audit trail.
type Handler struct {
	DB       *mongo.Database
	Events   *audit.Store
	Users    *userstore.Store
	Patients *patientstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// Loc interprets the date filters and formats timestamps.
	Loc *time.Location

	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs an audit log Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:       db,
		Events:   audit.New(db),
		Users:    userstore.New(db),
		Patients: patientstore.New(db),
		ErrLog:   errLog,
		Log:      logger,
		Loc:      loc,
		render:   templates.Render,
	}
}
