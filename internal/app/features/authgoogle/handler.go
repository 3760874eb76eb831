// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	loginstore "github.com/dalemusser/arenahub/internal/app/store/logins"
	"github.com/dalemusser/arenahub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/app/system/status"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateCookieName carries a signed copy of the OAuth state so the callback
// can verify the browser that started the flow is the one finishing it,
// in addition to the server-side state record.
const stateCookieName = "oauth_state"

// Handler handles Google OAuth sign-in.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Users      *userstore.Store
	Logins     *loginstore.Store
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://arenahub.example.com/auth/google/callback"

	cookieCodec *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. The session key doubles as
// the HMAC key for the state cookie.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, sessionKey string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		AuditLog:     audit,
		Users:        userstore.New(db),
		Logins:       loginstore.New(db),
		StateStore:   oauthstate.New(db),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		cookieCodec:  securecookie.New([]byte(sessionKey), nil),
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state := uuid.NewString()
	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("save OAuth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.setStateCookie(w, state); err != nil {
		h.Log.Error("encode OAuth state cookie failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code for tokens, fetches the Google profile, finds or creates  |
| the matching account, and signs the user in.                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	// The state must match both the server-side record and the signed
	// cookie set when the flow started.
	if cookieState, err := h.readStateCookie(r); err != nil || cookieState != state {
		h.Log.Warn("OAuth state cookie mismatch", zap.Error(err))
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}
	h.clearStateCookie(w)

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("validate OAuth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("OAuth code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("fetch Google user info failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	h.Log.Debug("Google user info fetched",
		zap.String("email", googleUser.Email),
		zap.String("name", googleUser.Name))

	u, err := h.findOrCreateUser(ctxTimeout, r, googleUser)
	if err != nil {
		switch err {
		case errUserDisabled:
			http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
		case errPasswordAccount:
			http.Redirect(w, r, "/login?error=password_account", http.StatusSeeOther)
		default:
			h.Log.Error("Google account lookup failed", zap.Error(err))
			http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		}
		return
	}

	h.signIn(w, r, u, returnURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Account lookup                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	errUserDisabled    = fmt.Errorf("user disabled")
	errPasswordAccount = fmt.Errorf("account uses password sign-in")
)

// googleUserInfo is the subset of Google's userinfo response we use.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser matches the Google profile to an account by email.
// A first-time Google sign-in creates the account on the spot; an account
// that signed up with a password keeps its password and is turned away here.
func (h *Handler) findOrCreateUser(ctx context.Context, r *http.Request, g *googleUserInfo) (*models.User, error) {
	u, err := h.Users.GetByEmail(ctx, g.Email)
	if err == nil {
		if u.AuthMethod != models.AuthMethodGoogle {
			h.Log.Info("Google sign-in refused for password account",
				zap.String("user_id", u.ID.Hex()))
			return nil, errPasswordAccount
		}
		if u.Status != status.Active {
			h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
			return nil, errUserDisabled
		}
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	created, err := h.Users.Create(ctx, models.User{
		Name:       g.Name,
		Email:      g.Email,
		AuthMethod: models.AuthMethodGoogle,
		Verified:   g.EmailVerified,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("create user from Google profile: %w", err)
	}

	h.Log.Info("account created via Google sign-in",
		zap.String("user_id", created.ID.Hex()))
	return &created, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session creation                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *models.User, returnURL string) {
	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("session sign-in failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Logins.CreateFrom(ctx, r, u.ID, models.AuthMethodGoogle); err != nil {
		h.Log.Warn("record login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, models.AuthMethodGoogle, u.Email)

	h.Log.Info("user signed in via Google",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| State cookie helpers                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) setStateCookie(w http.ResponseWriter, state string) error {
	encoded, err := h.cookieCodec.Encode(stateCookieName, state)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) readStateCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", err
	}
	var state string
	if err := h.cookieCodec.Decode(stateCookieName, c.Value, &state); err != nil {
		return "", err
	}
	return state, nil
}

func (h *Handler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
