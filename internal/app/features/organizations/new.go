// internal/app/features/organizations/new.go
package organizations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/arenahub/internal/app/system/inputval"
	"github.com/dalemusser/arenahub/internal/app/system/limits"
	"github.com/dalemusser/arenahub/internal/app/system/navigation"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// createOrgInput defines validation rules for creating an organization.
type createOrgInput struct {
	Name        string `validate:"required,max=200" label:"Organization name"`
	Description string `validate:"max=5000" label:"Description"`
	Visibility  string `validate:"required,visibility" label:"Visibility"`
}

// ServeNew renders the "New Organization" form. Any signed-in user can
// create an organization; they become its permanent creator.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := newData{Visibility: models.VisibilityPublic}
	formutil.SetBase(&data.Base, r, "New Organization", "/organizations")

	templates.Render(w, r, "organization_new", data)
}

// HandleCreate processes the New Organization form submission.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	visibility := strings.TrimSpace(r.FormValue("visibility"))

	renderWithError := func(msg string) {
		data := newData{
			Name:        name,
			Description: description,
			Visibility:  visibility,
		}
		formutil.SetBase(&data.Base, r, "New Organization", "/organizations")
		data.SetError(msg)
		templates.Render(w, r, "organization_new", data)
	}

	input := createOrgInput{Name: name, Description: description, Visibility: visibility}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org := models.Organization{
		Name:        name,
		Description: htmlsanitize.Sanitize(description),
		Visibility:  visibility,
	}

	created, err := h.Service.CreateOrganization(ctx, org, userID)
	if err != nil {
		if errors.Is(err, fault.ErrConflict) {
			renderWithError("An organization with that name already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create organization failed", err,
			"Database error while creating organization.", "/organizations")
		return
	}

	h.AuditLog.MembershipAction(ctx, audit.EventOrgCreated, userID, userID, created.ID, map[string]string{
		"name":       created.Name,
		"visibility": created.Visibility,
	})

	ret := navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/organizations",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         "/organizations/" + created.ID.Hex(),
	})
	http.Redirect(w, r, ret, http.StatusSeeOther)
}
