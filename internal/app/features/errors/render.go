// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/login"
	}

	data := pageData{
		Title:      "Sign in required",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    "Please sign in to continue.",
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_forbidden", data)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}

	data := pageData{
		Title:      "Access denied",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", data)
}

// RenderNotFound shows a friendly 404 page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/"
	}

	data := pageData{
		Title:      "Not found",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_notfound", data)
}

// RenderBadRequest shows a friendly error page for malformed input.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/"
	}

	data := pageData{
		Title:      "Invalid request",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_message", data)
}

// RenderServerError shows a friendly error page for internal failures.
// The underlying error should already have been logged by the caller.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/"
	}

	data := pageData{
		Title:      "Something went wrong",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}

	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_message", data)
}
