// Package snapshot runs the dashboard loaders.
//
// Each dashboard page needs several independent lists. Load* fetches them
// concurrently and returns once every query has settled. A failed query does
// not fail the page: the list last loaded successfully for the same scope is
// served instead (empty if there is none) and a notice is attached.
package snapshot

import (
	"context"
	"sync"

	"github.com/dalemusser/clinicdash/internal/app/system/metrics"
	"github.com/dalemusser/clinicdash/internal/app/system/notice"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Entity names used in notices, log fields, and metric labels.
const (
	EntityDoctors       = "doctors"
	EntityReceptionists = "receptionists"
	EntityPatients      = "patients"
	EntityAppointments  = "appointments"
	EntityPrescriptions = "prescriptions"
)

// Admin is everything the admin dashboard renders from.
type Admin struct {
	Doctors       []models.User
	Receptionists []models.User
	Patients      []models.Patient
	Appointments  []models.Appointment
	Notices       []notice.Notice
}

// Doctor is everything one doctor's dashboard renders from.
type Doctor struct {
	DoctorID      string
	Appointments  []models.Appointment
	Patients      []models.Patient
	Prescriptions []models.Prescription
	Notices       []notice.Notice
}

// UserLister lists users by role tag.
type UserLister interface {
	ListByRole(ctx context.Context, role string) ([]models.User, error)
}

// PatientLister lists every patient.
type PatientLister interface {
	List(ctx context.Context) ([]models.Patient, error)
}

// AppointmentLister lists appointments, newest first.
type AppointmentLister interface {
	ListAll(ctx context.Context) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
}

// PrescriptionLister lists a doctor's prescriptions, newest first.
type PrescriptionLister interface {
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Prescription, error)
}

// Sources groups the stores the loaders read.
type Sources struct {
	Users         UserLister
	Patients      PatientLister
	Appointments  AppointmentLister
	Prescriptions PrescriptionLister
}

// Loader runs the loaders and owns the last-good cache.
type Loader struct {
	src Sources
	log *zap.Logger

	mu       sync.Mutex
	lastGood map[cacheKey]any
}

type cacheKey struct {
	scope  string
	entity string
}

// NewLoader returns a Loader with an empty cache.
func NewLoader(src Sources, logger *zap.Logger) *Loader {
	return &Loader{src: src, log: logger, lastGood: make(map[cacheKey]any)}
}

const adminScope = "admin"

func doctorScope(id string) string { return "doctor:" + id }

// AdminEntities lists what LoadAdmin fetches when no entity is named.
var AdminEntities = []string{EntityDoctors, EntityReceptionists, EntityPatients, EntityAppointments}

// LoadAdmin loads the named admin lists concurrently; with no names it loads
// doctors, receptionists, patients, and all appointments. Lists not asked
// for are left nil and never queried.
func (l *Loader) LoadAdmin(ctx context.Context, entities ...string) Admin {
	if len(entities) == 0 {
		entities = AdminEntities
	}
	var (
		out  Admin
		errs = make([]*notice.Notice, len(AdminEntities))
		wg   conc.WaitGroup
		seen = make(map[string]bool, len(entities))
	)

	for _, entity := range entities {
		if seen[entity] {
			continue
		}
		seen[entity] = true
		switch entity {
		case EntityDoctors:
			wg.Go(func() {
				out.Doctors, errs[0] = load(ctx, l, adminScope, EntityDoctors, func(ctx context.Context) ([]models.User, error) {
					return l.src.Users.ListByRole(ctx, models.RoleDoctor)
				})
			})
		case EntityReceptionists:
			wg.Go(func() {
				out.Receptionists, errs[1] = load(ctx, l, adminScope, EntityReceptionists, func(ctx context.Context) ([]models.User, error) {
					return l.src.Users.ListByRole(ctx, models.RoleReceptionist)
				})
			})
		case EntityPatients:
			wg.Go(func() {
				out.Patients, errs[2] = load(ctx, l, adminScope, EntityPatients, l.src.Patients.List)
			})
		case EntityAppointments:
			wg.Go(func() {
				out.Appointments, errs[3] = load(ctx, l, adminScope, EntityAppointments, l.src.Appointments.ListAll)
			})
		default:
			l.log.Warn("unknown admin entity requested", zap.String("entity", entity))
		}
	}
	wg.Wait()

	out.Notices = collect(errs)
	return out
}

// LoadDoctor loads doctorID's appointments and prescriptions plus all patients.
func (l *Loader) LoadDoctor(ctx context.Context, doctorID string) Doctor {
	var (
		out   = Doctor{DoctorID: doctorID}
		errs  [3]*notice.Notice
		wg    conc.WaitGroup
		scope = doctorScope(doctorID)
	)

	wg.Go(func() {
		out.Appointments, errs[0] = load(ctx, l, scope, EntityAppointments, func(ctx context.Context) ([]models.Appointment, error) {
			return l.src.Appointments.ListByDoctor(ctx, doctorID)
		})
	})
	wg.Go(func() {
		out.Patients, errs[1] = load(ctx, l, scope, EntityPatients, l.src.Patients.List)
	})
	wg.Go(func() {
		out.Prescriptions, errs[2] = load(ctx, l, scope, EntityPrescriptions, func(ctx context.Context) ([]models.Prescription, error) {
			return l.src.Prescriptions.ListByDoctor(ctx, doctorID)
		})
	})
	wg.Wait()

	out.Notices = collect(errs[:])
	return out
}

// load runs one query under its own timeout. On success the result replaces
// the cached list; on failure the cached list is returned with a notice.
func load[T any](ctx context.Context, l *Loader, scope, entity string, fetch func(context.Context) ([]T, error)) ([]T, *notice.Notice) {
	qctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	key := cacheKey{scope: scope, entity: entity}
	list, err := fetch(qctx)
	if err == nil {
		if list == nil {
			list = []T{}
		}
		l.mu.Lock()
		l.lastGood[key] = list
		l.mu.Unlock()
		return list, nil
	}

	l.log.Error("loader failed; serving last good list",
		zap.String("scope", scope),
		zap.String("entity", entity),
		zap.Error(err))
	metrics.LoaderFailed(entity)
	n := notice.LoadFailed(entity)

	l.mu.Lock()
	cached, _ := l.lastGood[key].([]T)
	l.mu.Unlock()
	if cached == nil {
		cached = []T{}
	}
	return cached, &n
}

func collect(ns []*notice.Notice) []notice.Notice {
	var out []notice.Notice
	for _, n := range ns {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out
}
