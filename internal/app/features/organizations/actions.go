// internal/app/features/organizations/actions.go
package organizations

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/mailer"
	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Membership actions                                                           |
|                                                                              |
| Each POST funnels through the membership service, which enforces the org's   |
| authorization rules and state machine. Handlers translate service faults     |
| into user-facing error pages and record the audit trail.                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleApply handles POST /organizations/{id}/apply. Open organizations
// join immediately; the rest queue an application for admin review.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	h.selfAction(w, r, func(ctx context.Context, orgID, userID primitive.ObjectID) error {
		return h.Service.Apply(ctx, orgID, userID)
	}, audit.EventApplicationCreated, "apply to organization failed")
}

// HandleLeave handles POST /organizations/{id}/leave. Leaving forfeits
// the member's pending matches in the organization's events; the service
// refuses the creator.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.selfAction(w, r, func(ctx context.Context, orgID, userID primitive.ObjectID) error {
		return h.Service.Leave(ctx, orgID, userID)
	}, audit.EventMemberLeft, "leave organization failed")
}

// HandleAccept handles POST /organizations/{id}/accept/{userID}. On
// success the applicant gets a notification email when mail is enabled.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Accept(ctx, orgID, targetID, actorID)
	}, audit.EventApplicationAccepted, "accept application failed", h.sendAcceptanceEmail)
}

// HandleReject handles POST /organizations/{id}/reject/{userID}.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Reject(ctx, orgID, targetID, actorID)
	}, audit.EventApplicationRejected, "reject application failed", nil)
}

// HandlePromote handles POST /organizations/{id}/promote/{userID}.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Promote(ctx, orgID, targetID, actorID)
	}, audit.EventMemberPromoted, "promote member failed", nil)
}

// HandleDemote handles POST /organizations/{id}/demote/{userID}. The
// service refuses to demote the creator.
func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.RemoveAdmin(ctx, orgID, targetID, actorID)
	}, audit.EventAdminDemoted, "demote admin failed", nil)
}

// HandleKick handles POST /organizations/{id}/kick/{userID}. Kicking
// removes the member from the org's events and forfeits their pending
// matches; completed results stand.
func (h *Handler) HandleKick(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Kick(ctx, orgID, targetID, actorID)
	}, audit.EventMemberKicked, "kick member failed", nil)
}

// HandleBan handles POST /organizations/{id}/ban/{userID}. A ban pulls
// the user out of the org's events and suspends their membership until
// lifted; the membership row itself stays.
func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Ban(ctx, orgID, targetID, actorID)
	}, audit.EventUserBanned, "ban user failed", nil)
}

// HandleUnban handles POST /organizations/{id}/unban/{userID}. Lifting
// the ban puts a surviving membership back into effect; event bans from
// the cascade stay until lifted per event.
func (h *Handler) HandleUnban(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Unban(ctx, orgID, targetID, actorID)
	}, audit.EventUserUnbanned, "unban user failed", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Shared plumbing                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// selfAction runs an action the signed-in user takes on their own
// membership (apply, leave).
func (h *Handler) selfAction(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, orgID, userID primitive.ObjectID) error,
	eventType, logMsg string,
) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	orgURL := "/organizations/" + orgID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := op(ctx, orgID, userID); err != nil {
		h.ErrLog.LogFault(w, r, logMsg, err, orgURL)
		return
	}

	h.AuditLog.MembershipAction(ctx, eventType, userID, userID, orgID, nil)
	http.Redirect(w, r, orgURL, http.StatusSeeOther)
}

// adminAction runs an action an admin takes on another user's membership.
// The service re-checks that the actor administers the org; the target
// user ID comes from the path.
func (h *Handler) adminAction(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, orgID, targetID, actorID primitive.ObjectID) error,
	eventType, logMsg string,
	onSuccess func(ctx context.Context, orgID, targetID primitive.ObjectID),
) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	orgURL := "/organizations/" + orgID.Hex()

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid user.", orgURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := op(ctx, orgID, targetID, actorID); err != nil {
		h.ErrLog.LogFault(w, r, logMsg, err, orgURL)
		return
	}

	h.AuditLog.MembershipAction(ctx, eventType, actorID, targetID, orgID, nil)
	if onSuccess != nil {
		onSuccess(ctx, orgID, targetID)
	}
	http.Redirect(w, r, orgURL, http.StatusSeeOther)
}

func parseOrgID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
		return primitive.NilObjectID, false
	}
	return id, true
}

// sendAcceptanceEmail notifies a newly accepted member. Best-effort: a
// mail failure never surfaces to the admin who clicked accept.
func (h *Handler) sendAcceptanceEmail(ctx context.Context, orgID, targetID primitive.ObjectID) {
	if !h.Mailer.Enabled() {
		return
	}

	u, err := userstore.New(h.DB).GetByID(ctx, targetID)
	if err != nil {
		h.Log.Warn("load user for acceptance email failed", zap.Error(err),
			zap.String("user_id", targetID.Hex()))
		return
	}

	orgName := orgutil.GetOrgName(ctx, h.DB, orgID)
	email := mailer.BuildAcceptanceEmail(mailer.AcceptanceEmailData{
		SiteName: viewdata.SiteName,
		Name:     u.Name,
		Target:   orgName,
		Kind:     "organization",
		Link:     h.BaseURL + "/organizations/" + orgID.Hex(),
	})
	email.To = u.Email

	if err := h.Mailer.Send(ctx, email); err != nil {
		h.Log.Warn("send acceptance email failed", zap.Error(err),
			zap.String("user_id", targetID.Hex()))
	}
}
