// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authutil"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/inputval"
	"github.com/dalemusser/arenahub/internal/app/system/normalize"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// profileData is the view model for the profile page.
type profileData struct {
	formutil.Base

	Name       string
	Email      string
	AuthMethod string

	// Password section (only shown for password auth)
	ShowPasswordSection bool
	PasswordRules       string

	Success string
}

// updateNameInput defines validation rules for the display name form.
type updateNameInput struct {
	Name string `validate:"required,max=200" label:"Display name"`
}

// ServeProfile renders the signed-in user's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	data := h.buildProfileData(r, user)

	switch r.URL.Query().Get("success") {
	case "name":
		data.Success = "Display name updated."
	case "password":
		data.Success = "Password changed successfully."
	}

	templates.Render(w, r, "profile", data)
}

// HandleUpdateName processes the display name form.
func (h *Handler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	user, err := store.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	name := normalize.Name(r.FormValue("name"))

	if result := inputval.Validate(updateNameInput{Name: name}); result.HasErrors() {
		h.renderWithError(w, r, user, result.First())
		return
	}

	if err := store.UpdateProfile(ctx, uid, name); err != nil {
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "Failed to update profile.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=name", http.StatusSeeOther)
}

// HandleChangePassword processes the password change form.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	user, err := store.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	// SSO accounts carry no password hash.
	if user.AuthMethod != models.AuthMethodPassword {
		h.renderWithError(w, r, user, "Password change is only available for password sign-in.")
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if !store.CheckPassword(user, currentPassword) {
		h.renderWithError(w, r, user, "Current password is incorrect.")
		return
	}

	if err := authutil.ValidatePassword(newPassword); err != nil {
		h.renderWithError(w, r, user, authutil.PasswordRules())
		return
	}

	if newPassword != confirmPassword {
		h.renderWithError(w, r, user, "New passwords do not match.")
		return
	}

	if store.CheckPassword(user, newPassword) {
		h.renderWithError(w, r, user, "New password cannot be the same as your current password.")
		return
	}

	if err := store.SetPassword(ctx, uid, newPassword); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Failed to update password.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

func (h *Handler) buildProfileData(r *http.Request, user *models.User) profileData {
	data := profileData{
		Name:                user.Name,
		Email:               user.Email,
		AuthMethod:          formatAuthMethod(user.AuthMethod),
		ShowPasswordSection: user.AuthMethod == models.AuthMethodPassword,
		PasswordRules:       authutil.PasswordRules(),
	}
	formutil.SetBase(&data.Base, r, "Profile", "/dashboard")
	return data
}

// renderWithError re-renders the profile page with an error message.
func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, user *models.User, msg string) {
	data := h.buildProfileData(r, user)
	data.SetError(msg)
	templates.Render(w, r, "profile", data)
}

// formatAuthMethod returns a human-readable label for the auth method.
func formatAuthMethod(method string) string {
	switch method {
	case models.AuthMethodPassword:
		return "Password"
	case models.AuthMethodGoogle:
		return "Google"
	default:
		return method
	}
}
