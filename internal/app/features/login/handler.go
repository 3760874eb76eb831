// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	loginstore "github.com/dalemusser/arenahub/internal/app/store/logins"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/app/system/authutil"
	"github.com/dalemusser/arenahub/internal/app/system/inputval"
	"github.com/dalemusser/arenahub/internal/app/system/ratelimit"
	"github.com/dalemusser/arenahub/internal/app/system/status"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	Users         *userstore.Store
	Logins        *loginstore.Store
	Limiter       *ratelimit.LoginLimiter
	GoogleEnabled bool // True if Google OAuth is configured
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Users:         userstore.New(db),
		Logins:        loginstore.New(db),
		Limiter:       ratelimit.NewLoginLimiter(),
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Name          string
	Email         string
	PasswordRules string
	ReturnURL     string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderLoginError(w, r, "Please enter your email and password.", email)
		return
	}

	// Throttle by client IP and by email before touching the database.
	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited",
			zap.String("reason", reason),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.renderLoginError(w, r, "Too many login attempts. Please wait a minute and try again.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch err {
	case nil:
		// found – continue
	case mongo.ErrNoDocuments:
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		h.renderLoginError(w, r, "No account found for that email.", email)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.Status != status.Active {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, email)
		h.renderLoginError(w, r, "Your account is currently disabled.", email)
		return
	}

	if u.AuthMethod == models.AuthMethodGoogle {
		h.renderLoginError(w, r, "This account signs in with Google.", email)
		return
	}

	if !h.Users.CheckPassword(u, password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		h.renderLoginError(w, r, "Incorrect password.", email)
		return
	}

	h.signIn(w, r, u, models.AuthMethodPassword)
}

// signIn records the session, login history, and audit trail, then
// redirects to the safe return URL.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *models.User, method string) {
	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "session sign-in failed", err, "A server error occurred.", "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Logins.CreateFrom(ctx, r, u.ID, method); err != nil {
		// History is best-effort; the login itself already succeeded.
		h.Log.Warn("record login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, method, u.Email)
	h.Limiter.ResetEmail(u.Email)

	ret := urlutil.SafeReturn(r.FormValue("return"), "", "/dashboard")
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, msg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     r.FormValue("return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login/signup                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create Account", "/login"),
		PasswordRules: authutil.PasswordRules(),
		ReturnURL:     query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/signup                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// signupInput defines validation rules for the signup form.
type signupInput struct {
	Name  string `validate:"required,max=200" label:"Name"`
	Email string `validate:"required,email,max=320" label:"Email"`
}

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login/signup")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	renderWithError := func(msg string) {
		templates.Render(w, r, "signup", signupFormData{
			BaseVM:        viewdata.NewBaseVM(r, "Create Account", "/login"),
			Error:         msg,
			Name:          name,
			Email:         email,
			PasswordRules: authutil.PasswordRules(),
			ReturnURL:     r.FormValue("return"),
		})
	}

	input := signupInput{Name: name, Email: email}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	if err := authutil.ValidatePassword(password); err != nil {
		renderWithError(authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:       name,
		Email:      email,
		AuthMethod: models.AuthMethodPassword,
	}, password)
	if err != nil {
		if err == userstore.ErrDuplicateUser {
			renderWithError("An account with that email already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create user failed", err, "A server error occurred.", "/login/signup")
		return
	}

	h.Log.Info("account created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("auth_method", models.AuthMethodPassword))

	h.signIn(w, r, &u, models.AuthMethodPassword)
}
