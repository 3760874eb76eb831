// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to ArenaHub lives: the MongoDB
// connection, session cookies, outbound mail, audit-log routing, and the
// Google OAuth credentials.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: arenahub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit, email-smtp.us-east-1.amazonaws.com for SES)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit, SES SMTP credentials for AWS)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@arenahub.example)
	MailFromName string // From display name (e.g., ArenaHub)

	// Base URL for links in notification emails
	BaseURL string // e.g., "https://arenahub.example" or "http://localhost:3000"

	// Audit logging routing per category: "all", "db", "log", or "off"
	AuditLogAuth       string // Authentication events (login, logout, OAuth)
	AuditLogMembership string // Organization membership lifecycle events
	AuditLogMatch      string // Match lifecycle and score events

	// Google OAuth configuration (blank disables the Google sign-in flow)
	GoogleClientID     string
	GoogleClientSecret string
}
