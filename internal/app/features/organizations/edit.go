// internal/app/features/organizations/edit.go
package organizations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/gates"
	"github.com/dalemusser/arenahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/arenahub/internal/app/system/inputval"
	"github.com/dalemusser/arenahub/internal/app/system/limits"
	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// editOrgInput defines validation rules for editing an organization.
type editOrgInput struct {
	Name        string `validate:"required,max=200" label:"Organization name"`
	Description string `validate:"max=5000" label:"Description"`
	Visibility  string `validate:"required,visibility" label:"Visibility"`
}

// ServeEdit renders the edit form. Only org admins (and the creator)
// get here; everyone else sees a forbidden page.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.resolveAdminOrg(ctx, w, r)
	if !ok {
		return
	}

	data := editData{
		ID:          org.ID.Hex(),
		Name:        org.Name,
		Description: org.Description,
		Visibility:  org.Visibility,
	}
	formutil.SetBase(&data.Base, r, "Edit "+org.Name, "/organizations/"+org.ID.Hex())

	templates.Render(w, r, "organization_edit", data)
}

// HandleEdit processes the edit form submission.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.resolveAdminOrg(ctx, w, r)
	if !ok {
		return
	}
	orgURL := "/organizations/" + org.ID.Hex()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", orgURL)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	visibility := strings.TrimSpace(r.FormValue("visibility"))

	renderWithError := func(msg string) {
		data := editData{
			ID:          org.ID.Hex(),
			Name:        name,
			Description: description,
			Visibility:  visibility,
		}
		formutil.SetBase(&data.Base, r, "Edit "+org.Name, orgURL)
		data.SetError(msg)
		templates.Render(w, r, "organization_edit", data)
	}

	input := editOrgInput{Name: name, Description: description, Visibility: visibility}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	err := organizationstore.New(h.DB).Update(ctx, org.ID, models.Organization{
		Name:        name,
		Description: htmlsanitize.Sanitize(description),
		Visibility:  visibility,
	})
	if err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			renderWithError("An organization with that name already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update organization failed", err,
			"Database error while updating organization.", orgURL)
		return
	}

	_, userID, _ := authz.UserCtx(r)
	h.AuditLog.MembershipAction(ctx, audit.EventOrgUpdated, userID, userID, org.ID, map[string]string{
		"name":       name,
		"visibility": visibility,
	})

	http.Redirect(w, r, orgURL, http.StatusSeeOther)
}

// resolveAdminOrg loads the {id} org and verifies the caller administers
// it, writing the error page itself when either check fails.
func (h *Handler) resolveAdminOrg(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Organization, bool) {
	org, err := orgutil.ResolveOrgFromHex(ctx, h.DB, chi.URLParam(r, "id"))
	if err != nil {
		if orgutil.IsExpectedOrgError(err) {
			uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
			return models.Organization{}, false
		}
		h.ErrLog.LogServerError(w, r, "load organization failed", err, "Unable to load organization.", "/organizations")
		return models.Organization{}, false
	}

	res := gates.RequireOrgAdmin(ctx, w, r, h.DB, org.ID,
		"You do not administer this organization.", "/organizations/"+org.ID.Hex())
	if !res.OK {
		return models.Organization{}, false
	}
	return org, true
}
