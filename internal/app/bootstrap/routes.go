// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	aboutfeature "github.com/dalemusser/arenahub/internal/app/features/about"
	auditlogfeature "github.com/dalemusser/arenahub/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/arenahub/internal/app/features/authgoogle"
	contactfeature "github.com/dalemusser/arenahub/internal/app/features/contact"
	dashboardfeature "github.com/dalemusser/arenahub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/arenahub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/arenahub/internal/app/features/events"
	healthfeature "github.com/dalemusser/arenahub/internal/app/features/health"
	homefeature "github.com/dalemusser/arenahub/internal/app/features/home"
	loginfeature "github.com/dalemusser/arenahub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/arenahub/internal/app/features/logout"
	matchesfeature "github.com/dalemusser/arenahub/internal/app/features/matches"
	organizationsfeature "github.com/dalemusser/arenahub/internal/app/features/organizations"
	profilefeature "github.com/dalemusser/arenahub/internal/app/features/profile"
	termsfeature "github.com/dalemusser/arenahub/internal/app/features/terms"
	"github.com/dalemusser/arenahub/internal/app/features/userinfo"
	auditstore "github.com/dalemusser/arenahub/internal/app/store/audit"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
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
// ArenaHub initializes the template engine, builds the shared audit logger
// and mailer, applies session and CSRF middleware, and mounts feature
// routers for all application areas: home, login, dashboard, organizations,
// events, matches, and the audit viewer.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ArenaHubMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures role changes, disabled accounts, and profile updates take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Shared audit logger: writes to MongoDB and/or the structured log
	// depending on the per-category routing in config.
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Membership: appCfg.AuditLogMembership,
		Match:      appCfg.AuditLogMatch,
	})

	// Outbound mail for acceptance notifications. A blank SMTP host
	// disables sending without disabling the features that use it.
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	googleEnabled := appCfg.GoogleClientID != ""

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts. Tokens are surfaced to templates
	// through the shared view data.
	r.Use(csrf.Protect([]byte(appCfg.SessionKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ArenaHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	contactHandler := contactfeature.NewHandler(logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	termsHandler := termsfeature.NewHandler(logger)
	r.Mount("/terms", termsfeature.Routes(termsHandler))

	// Identity endpoint for game-client integrations
	userinfo.MountRoutes(r, userinfo.NewHandler())

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, audit, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, errLog, audit,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.SessionKey, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in landing page
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Account profile
	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Organizations: profiles, membership, bans
	orgHandler := organizationsfeature.NewHandler(db, errLog, audit, mail, appCfg.BaseURL, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler, sessionMgr))

	// Tournament events: creation, applications, participants, standings
	eventsHandler := eventsfeature.NewHandler(db, errLog, audit, mail, appCfg.BaseURL, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	// Matches: rosters, score submission, finalization
	matchesHandler := matchesfeature.NewHandler(db, errLog, audit, logger)
	r.Mount("/matches", matchesfeature.Routes(matchesHandler, sessionMgr))

	// Audit viewer for organization admins
	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
