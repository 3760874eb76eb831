package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/arenahub/internal/app/features/userinfo"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

func TestServeUserInfo_Anonymous(t *testing.T) {
	h := userinfo.NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	h.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	body := decodeBody(t, rec)
	if body["isAuthenticated"] != false {
		t.Errorf("isAuthenticated = %v, want false", body["isAuthenticated"])
	}
	if body["name"] != "" {
		t.Errorf("name = %v, want empty", body["name"])
	}
}

func TestServeUserInfo_SignedIn(t *testing.T) {
	h := userinfo.NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    "66f0000000000000000000aa",
		Name:  "Dana Player",
		Email: "dana@example.com",
	})
	rec := httptest.NewRecorder()
	h.ServeUserInfo(rec, req)

	body := decodeBody(t, rec)
	if body["isAuthenticated"] != true {
		t.Errorf("isAuthenticated = %v, want true", body["isAuthenticated"])
	}
	if body["name"] != "Dana Player" {
		t.Errorf("name = %v, want Dana Player", body["name"])
	}
	if body["email"] != "dana@example.com" {
		t.Errorf("email = %v, want dana@example.com", body["email"])
	}
	if body["id"] != "66f0000000000000000000aa" {
		t.Errorf("id = %v", body["id"])
	}
}

func TestMountRoutes(t *testing.T) {
	r := chi.NewRouter()
	userinfo.MountRoutes(r, userinfo.NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
