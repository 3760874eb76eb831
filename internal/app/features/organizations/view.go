// internal/app/features/organizations/view.go
package organizations

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	applicationstore "github.com/dalemusser/arenahub/internal/app/store/applications"
	banstore "github.com/dalemusser/arenahub/internal/app/store/bans"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	membershipstore "github.com/dalemusser/arenahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeView handles GET /organizations/{id}. A hidden organization is
// reported as not-found to everyone but its members, so its existence
// never leaks through this page.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, userID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := orgutil.ResolveOrgFromHex(ctx, h.DB, chi.URLParam(r, "id"))
	if err != nil {
		if orgutil.IsExpectedOrgError(err) {
			uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
			return
		}
		h.ErrLog.LogServerError(w, r, "load organization failed", err, "Unable to load organization.", "/organizations")
		return
	}

	canView, err := orgpolicy.CanView(ctx, h.DB, org, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve view permission failed", err, "Unable to load organization.", "/organizations")
		return
	}
	if !canView {
		uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
		return
	}

	role, err := orgpolicy.RoleOf(ctx, h.DB, org, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve role failed", err, "Unable to load organization.", "/organizations")
		return
	}
	isAdmin := role == orgpolicy.RoleCreator || role == orgpolicy.RoleAdmin

	data := viewData{
		BaseVM:          viewdata.NewBaseVM(r, org.Name, "/organizations"),
		ID:              org.ID.Hex(),
		Name:            org.Name,
		DescriptionHTML: htmlsanitize.PrepareForDisplay(org.Description),
		Visibility:      org.Visibility,
		Role:            role,
		IsAdmin:         isAdmin,
		CanApply:        role == orgpolicy.RoleNone && orgAcceptsApplications(org),
	}

	if err := h.loadRoster(ctx, org, &data); err != nil {
		h.ErrLog.LogServerError(w, r, "load roster failed", err, "Unable to load organization.", "/organizations")
		return
	}

	events, err := eventstore.New(h.DB).ListByOrg(ctx, org.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load events failed", err, "Unable to load organization.", "/organizations")
		return
	}
	// Hidden events stay off the page for non-members of the org.
	member := role == orgpolicy.RoleCreator || role == orgpolicy.RoleAdmin || role == orgpolicy.RoleMember
	for _, ev := range events {
		if ev.Visibility == models.VisibilityHidden && !member {
			continue
		}
		data.Events = append(data.Events, ev)
	}

	if isAdmin {
		if err := h.loadAdminPanels(ctx, org.ID, &data); err != nil {
			// Admin panels are secondary; log and render without them.
			h.Log.Warn("load admin panels failed", zap.Error(err),
				zap.String("org_id", org.ID.Hex()))
		}
	}

	templates.Render(w, r, "organization_view", data)
}

// orgAcceptsApplications mirrors the service-side rule: open, public, and private
// organizations accept applications; hidden ones only via direct action
// by a member (which the page does not offer).
func orgAcceptsApplications(org models.Organization) bool {
	return org.Visibility != models.VisibilityHidden
}

func (h *Handler) loadRoster(ctx context.Context, org models.Organization, data *viewData) error {
	rows, err := membershipstore.New(h.DB).ListByOrg(ctx, org.ID, "")
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	for _, m := range rows {
		role := m.Role
		if m.UserID == org.CreatorID {
			role = string(orgpolicy.RoleCreator)
		}
		data.Roster = append(data.Roster, rosterRow{
			UserID: m.UserID,
			Name:   nameByID[m.UserID],
			Role:   role,
		})
	}
	return nil
}

func (h *Handler) loadAdminPanels(ctx context.Context, orgID primitive.ObjectID, data *viewData) error {
	apps, err := applicationstore.New(h.DB).ListOrg(ctx, orgID)
	if err != nil {
		return err
	}
	bans, err := banstore.New(h.DB).ListOrgBans(ctx, orgID, models.BanActive)
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(apps)+len(bans))
	for _, a := range apps {
		ids = append(ids, a.UserID)
	}
	for _, b := range bans {
		ids = append(ids, b.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	for _, a := range apps {
		data.Applicants = append(data.Applicants, applicantRow{UserID: a.UserID, Name: nameByID[a.UserID]})
	}
	for _, b := range bans {
		data.Banned = append(data.Banned, applicantRow{UserID: b.UserID, Name: nameByID[b.UserID]})
	}
	return nil
}
