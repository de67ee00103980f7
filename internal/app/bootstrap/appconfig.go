// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS and CSRF settings
//   - Request body size limits
//
// AppConfig carries everything specific to the clinic dashboards: the
// MongoDB connection, session cookie, clinic time zone, billing default,
// account provisioning behaviour, and the bootstrap administrator.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Upper bound on pooled connections
	MongoMinPoolSize uint64 // Connections kept warm

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: clinicdash-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Clinic configuration
	ClinicTimezone string         // IANA zone name used for "today" and calendar buckets
	ClinicLocation *time.Location // Parsed ClinicTimezone (set by ValidateConfig)
	DefaultFee     int            // Consultation fee when settings carry none

	// Account provisioning
	AccountCreateReauth bool // Sign the admin out after creating a staff account

	// Login throttling
	LoginRatePerMinute int      // Attempts per minute per IP and per email
	TrustedProxies     []string // Peers allowed to set the client IP via forwarding headers

	// Audit trail routing per category: all, db, log, or off
	AuditLogAuth     string
	AuditLogAdmin    string
	AuditLogClinical string
	AuditRetention   time.Duration // Age after which audit events are deleted (0 keeps them)

	// Administrator bootstrap (promotes/creates on startup)
	AdminEmail    string
	AdminName     string
	AdminPassword string
}
