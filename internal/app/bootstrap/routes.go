// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/clinicdash/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/clinicdash/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/clinicdash/internal/app/features/dashboard"
	doctorfeature "github.com/dalemusser/clinicdash/internal/app/features/doctor"
	errorsfeature "github.com/dalemusser/clinicdash/internal/app/features/errors"
	healthfeature "github.com/dalemusser/clinicdash/internal/app/features/health"
	loginfeature "github.com/dalemusser/clinicdash/internal/app/features/login"
	logoutfeature "github.com/dalemusser/clinicdash/internal/app/features/logout"
	appointmentstore "github.com/dalemusser/clinicdash/internal/app/store/appointments"
	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	patientstore "github.com/dalemusser/clinicdash/internal/app/store/patients"
	prescriptionstore "github.com/dalemusser/clinicdash/internal/app/store/prescriptions"
	userstore "github.com/dalemusser/clinicdash/internal/app/store/users"
	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/auditlog"
	"github.com/dalemusser/clinicdash/internal/app/system/auth"
	"github.com/dalemusser/clinicdash/internal/app/system/ratelimit"
	"github.com/dalemusser/clinicdash/internal/app/system/snapshot"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// clinicdash initializes the template engine, applies session middleware,
// builds the shared snapshot loader, and mounts the admin and doctor
// dashboards alongside login, logout, the audit log, health, and metrics.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ClinicDashMongoDatabase

	loc, err := clinicLocation(appCfg)
	if err != nil {
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so role changes and deletions apply immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	// One loader serves both dashboards so they share the last-good cache.
	loader := snapshot.NewLoader(snapshot.Sources{
		Users:         userstore.New(db),
		Patients:      patientstore.New(db),
		Appointments:  appointmentstore.New(db),
		Prescriptions: prescriptionstore.New(db),
	}, logger)
	provisioner := accounts.New(userstore.New(db), appCfg.AccountCreateReauth, logger)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute)
	audits := auditlog.New(audit.New(db), logger, auditConfig(appCfg))

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ClinicDashMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, limiter, audits, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audits, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Role dispatch
	dashboardHandler := dashboardfeature.NewHandler(logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Admin dashboard
	adminHandler := adminfeature.NewHandler(db, loader, provisioner, sessionMgr, errLog, audits, loc, appCfg.DefaultFee, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

	// Doctor dashboard
	doctorHandler := doctorfeature.NewHandler(db, loader, sessionMgr, errLog, audits, loc, logger)
	r.Mount("/doctor", doctorfeature.Routes(doctorHandler, sessionMgr))

	// Audit trail (admins only)
	auditHandler := auditlogfeature.NewHandler(db, errLog, loc, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
