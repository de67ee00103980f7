// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	"github.com/dalemusser/clinicdash/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Logging destinations for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration. Each field takes one of the
// Mode* values; blank means ModeAll.
type Config struct {
	// Auth covers sign-in and sign-out.
	Auth string
	// Admin covers account creation, deletion, role changes, and settings.
	Admin string
	// Clinical covers appointment status changes and prescriptions.
	Clinical string
}

// ValidMode reports whether m is an accepted destination value.
func ValidMode(m string) bool {
	switch m {
	case "", ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Validate rejects unknown destination values.
func (c Config) Validate() error {
	for name, v := range map[string]string{"auth": c.Auth, "admin": c.Admin, "clinical": c.Clinical} {
		if !ValidMode(v) {
			return fmt.Errorf("audit_log_%s: unknown mode %q (want all, db, log, or off)", name, v)
		}
	}
	return nil
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so handlers built without one still work.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryClinical:
		setting = l.config.Clinical
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if setting == ModeAll || setting == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	}))
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        userID,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	}))
}

// LoginFailedRateLimit logs a login refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"email": email},
	}))
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		Success:   true,
	}))
}

// --- Admin Events ---

// UserCreated logs a staff account created from the admin dashboard.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, targetUserID, role string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserCreated,
		UserID:    targetUserID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// UserDeleted logs a staff record removed from the admin dashboard.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetUserID, role string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		UserID:    targetUserID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// RoleChanged logs a role assignment.
func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, actorID, targetUserID, role string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventRoleChanged,
		UserID:    targetUserID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// SettingsSaved logs a change to the clinic settings.
func (l *Logger) SettingsSaved(ctx context.Context, r *http.Request, actorID, clinicName string, fee *int) {
	details := map[string]string{"clinic_name": clinicName}
	if fee != nil {
		details["consultation_fee"] = fmt.Sprintf("%d", *fee)
	}
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSettingsSaved,
		ActorID:   actorID,
		Success:   true,
		Details:   details,
	}))
}

// --- Clinical Events ---

// AppointmentStatusChanged logs a doctor updating one of their appointments.
func (l *Logger) AppointmentStatusChanged(ctx context.Context, r *http.Request, doctorID, appointmentID, status string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryClinical,
		EventType: audit.EventAppointmentStatusChanged,
		ActorID:   doctorID,
		Success:   true,
		Details:   map[string]string{"appointment_id": appointmentID, "status": status},
	}))
}

// PrescriptionCreated logs a prescription written for a patient.
func (l *Logger) PrescriptionCreated(ctx context.Context, r *http.Request, doctorID, patientID, prescriptionID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryClinical,
		EventType: audit.EventPrescriptionCreated,
		UserID:    patientID,
		ActorID:   doctorID,
		Success:   true,
		Details:   map[string]string{"prescription_id": prescriptionID},
	}))
}
