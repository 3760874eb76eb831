// internal/app/features/events/new.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/gates"
	"github.com/dalemusser/arenahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/arenahub/internal/app/system/inputval"
	"github.com/dalemusser/arenahub/internal/app/system/limits"
	"github.com/dalemusser/arenahub/internal/app/system/navigation"
	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// createEventInput defines validation rules for creating an event.
type createEventInput struct {
	Name        string `validate:"required,max=200" label:"Event name"`
	Description string `validate:"max=5000" label:"Description"`
	Visibility  string `validate:"required,visibility" label:"Visibility"`
}

// ServeNew renders the "New Event" form for GET /events/new?org={hex}.
// Only admins of the owning organization may create events under it.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.resolveAdminOrg(ctx, w, r, r.URL.Query().Get("org"))
	if !ok {
		return
	}

	data := newData{
		OrgID:      org.ID.Hex(),
		OrgName:    org.Name,
		Visibility: models.VisibilityPublic,
	}
	formutil.SetBase(&data.Base, r, "New Event", "/organizations/"+org.ID.Hex())

	templates.Render(w, r, "event_new", data)
}

// HandleCreate processes the New Event form submission.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/organizations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.resolveAdminOrg(ctx, w, r, r.FormValue("org"))
	if !ok {
		return
	}
	_, userID, _ := authz.UserCtx(r)

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	visibility := strings.TrimSpace(r.FormValue("visibility"))
	lowestWins := r.FormValue("lowest_score_wins") == "on"

	orgURL := "/organizations/" + org.ID.Hex()

	renderWithError := func(msg string) {
		data := newData{
			OrgID:           org.ID.Hex(),
			OrgName:         org.Name,
			Name:            name,
			Description:     description,
			Visibility:      visibility,
			LowestScoreWins: lowestWins,
		}
		formutil.SetBase(&data.Base, r, "New Event", orgURL)
		data.SetError(msg)
		templates.Render(w, r, "event_new", data)
	}

	input := createEventInput{Name: name, Description: description, Visibility: visibility}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(result.First())
		return
	}

	ev := models.Event{
		OrganizationID:  org.ID,
		Name:            name,
		Description:     htmlsanitize.Sanitize(description),
		Visibility:      visibility,
		LowestScoreWins: lowestWins,
	}

	created, err := h.Service.CreateEvent(ctx, ev, userID)
	if err != nil {
		if errors.Is(err, fault.ErrConflict) {
			renderWithError("An event with that name already exists in this organization.")
			return
		}
		h.ErrLog.LogFault(w, r, "create event failed", err, orgURL)
		return
	}

	h.AuditLog.ParticipationAction(ctx, audit.EventEventCreated, userID, userID, org.ID, created.ID, map[string]string{
		"name":       created.Name,
		"visibility": created.Visibility,
	})

	ret := navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/events",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         "/events/" + created.ID.Hex(),
	})
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

// resolveAdminOrg resolves the org query/form parameter and checks that
// the signed-in user administers it. It writes the error response and
// returns ok=false on failure.
func (h *Handler) resolveAdminOrg(ctx context.Context, w http.ResponseWriter, r *http.Request, hex string) (models.Organization, bool) {
	org, err := orgutil.ResolveOrgFromHex(ctx, h.DB, hex)
	if err != nil {
		if orgutil.IsExpectedOrgError(err) {
			uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
			return models.Organization{}, false
		}
		h.ErrLog.LogServerError(w, r, "load organization failed", err, "Unable to load organization.", "/organizations")
		return models.Organization{}, false
	}

	res := gates.RequireOrgAdmin(ctx, w, r, h.DB, org.ID,
		"Only organization admins can manage events.", "/organizations/"+org.ID.Hex())
	if !res.OK {
		return models.Organization{}, false
	}
	return org, true
}
