package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/features/authgoogle"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) (*authgoogle.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	h := authgoogle.NewHandler(db, sessionMgr, errLog, nil,
		clientID, clientSecret, "http://localhost:8080", "test-session-key-for-testing-only", logger)
	return h, db
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h, _ := newTestHandler(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_not_configured") {
		t.Errorf("location: got %q, want google_not_configured error", loc)
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google?return=/organizations", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("location: got %q, want a Google consent URL", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("location: got %q, want a state parameter", loc)
	}

	// The signed state cookie must accompany the redirect.
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected oauth_state cookie to be set")
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("location: got %q, want invalid_state error", loc)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_denied") {
		t.Errorf("location: got %q, want google_denied error", loc)
	}
}

func TestServeCallback_StateWithoutCookie(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	// A state value that was never issued to this browser: no signed
	// cookie accompanies it, so the callback must refuse it.
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("location: got %q, want invalid_state error", loc)
	}
}
