// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/system/accounts"
	"github.com/dalemusser/clinicdash/internal/app/system/auditlog"
	"github.com/dalemusser/clinicdash/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted outside dev.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for clinicdash.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CLINICDASH_MONGO_URI, CLINICDASH_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "clinicdash", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "clinicdash-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 8h, 24h)"},

	// Clinic
	{Name: "clinic_timezone", Default: "UTC", Desc: "IANA time zone for today's appointments and daily charts"},
	{Name: "default_fee", Default: 500, Desc: "Consultation fee used when clinic settings have none"},

	// Account provisioning
	{Name: "account_create_reauth", Default: accounts.DefaultReauth, Desc: "Sign the admin out after creating a staff account (default: true)"},

	// Login throttling
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per minute per IP and per email"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs or CIDRs whose X-Forwarded-For/X-Real-IP are honored (default: none)"},

	// Audit trail
	{Name: "audit_log_auth", Default: "all", Desc: "Where login and logout events go: all, db, log, off"},
	{Name: "audit_log_admin", Default: "all", Desc: "Where account and settings events go: all, db, log, off"},
	{Name: "audit_log_clinical", Default: "all", Desc: "Where appointment and prescription events go: all, db, log, off"},
	{Name: "audit_retention", Default: "0", Desc: "Delete audit events older than this (e.g., 2160h); 0 keeps them"},

	// Administrator bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap administrator (promotes/creates on startup)"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name used when the bootstrap administrator is created"},
	{Name: "admin_password", Default: "", Desc: "Password used when the bootstrap administrator is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CLINICDASH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLINICDASH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		// Clinic
		ClinicTimezone: strings.TrimSpace(appValues.String("clinic_timezone")),
		DefaultFee:     appValues.Int("default_fee"),

		// Account provisioning
		AccountCreateReauth: appValues.Bool("account_create_reauth"),

		// Login throttling
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		TrustedProxies:     splitList(appValues.String("trusted_proxies")),

		// Audit trail
		AuditLogAuth:     strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
		AuditLogAdmin:    strings.ToLower(strings.TrimSpace(appValues.String("audit_log_admin"))),
		AuditLogClinical: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_clinical"))),
		AuditRetention:   appValues.Duration("audit_retention", 0),

		// Administrator bootstrap
		AdminEmail:    appValues.String("admin_email"),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The WAFFLE lifecycle hands the validated AppConfig to later hooks, but
// by value, so the clinic location is parsed again where it is needed
// (see clinicLocation).
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}

	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if _, err := clinicLocation(appCfg); err != nil {
		return err
	}

	if appCfg.DefaultFee < 0 {
		return fmt.Errorf("default_fee must be zero or more, got %d", appCfg.DefaultFee)
	}

	if appCfg.LoginRatePerMinute <= 0 {
		return fmt.Errorf("login_rate_per_minute must be positive, got %d", appCfg.LoginRatePerMinute)
	}

	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return err
	}

	if err := auditConfig(appCfg).Validate(); err != nil {
		return err
	}

	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative, got %s", appCfg.AuditRetention)
	}

	if len(appCfg.SessionKey) < minSessionKeyLen {
		if coreCfg == nil || coreCfg.Env != "dev" {
			return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
		}
		logger.Warn("short session key accepted in dev", zap.Int("length", len(appCfg.SessionKey)))
	}

	return nil
}

func auditConfig(appCfg AppConfig) auditlog.Config {
	return auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Admin:    appCfg.AuditLogAdmin,
		Clinical: appCfg.AuditLogClinical,
	}
}

// clinicLocation resolves the configured clinic time zone. Blank means UTC.
func clinicLocation(appCfg AppConfig) (*time.Location, error) {
	if appCfg.ClinicLocation != nil {
		return appCfg.ClinicLocation, nil
	}
	if appCfg.ClinicTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(appCfg.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic_timezone %q: %w", appCfg.ClinicTimezone, err)
	}
	return loc, nil
}

// splitList splits a comma-separated config value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
