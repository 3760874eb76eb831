// internal/app/features/events/actions.go
package events

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/mailer"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Participation actions                                                        |
|                                                                              |
| Each POST funnels through the participation service, which enforces org      |
| membership, ban checks, and admin authorization. Handlers translate          |
| service faults into user-facing error pages and record the audit trail.     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleApply handles POST /events/{id}/apply. Enrollment always queues
// an application for admin review; there is no instant-join event.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	h.selfAction(w, r, func(ctx context.Context, eventID, userID primitive.ObjectID) error {
		return h.Service.Apply(ctx, eventID, userID)
	}, audit.EventApplicationCreated, "apply to event failed")
}

// HandleAccept handles POST /events/{id}/accept/{userID}. On success the
// applicant gets a notification email when mail is enabled.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, eventID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Accept(ctx, eventID, targetID, actorID)
	}, audit.EventApplicationAccepted, "accept event application failed", h.sendAcceptanceEmail)
}

// HandleReject handles POST /events/{id}/reject/{userID}.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, eventID, targetID, actorID primitive.ObjectID) error {
		return h.Service.Reject(ctx, eventID, targetID, actorID)
	}, audit.EventApplicationRejected, "reject event application failed", nil)
}

// HandleBan handles POST /events/{id}/ban/{userID}. An event ban removes
// the participant and blocks re-application until lifted. Org membership
// and existing matches are untouched.
func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, eventID, targetID, actorID primitive.ObjectID) error {
		return h.Service.BanFromEvent(ctx, eventID, targetID, actorID)
	}, audit.EventUserBanned, "ban from event failed", nil)
}

// HandleUnban handles POST /events/{id}/unban/{userID}. Lifting the ban
// does not re-enroll the user; they may apply again.
func (h *Handler) HandleUnban(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(ctx context.Context, eventID, targetID, actorID primitive.ObjectID) error {
		return h.Service.UnbanFromEvent(ctx, eventID, targetID, actorID)
	}, audit.EventUserUnbanned, "unban from event failed", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Shared plumbing                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// selfAction runs an action the signed-in user takes on their own
// enrollment (apply).
func (h *Handler) selfAction(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, eventID, userID primitive.ObjectID) error,
	eventType, logMsg string,
) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}
	eventURL := "/events/" + eventID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := op(ctx, eventID, userID); err != nil {
		h.ErrLog.LogFault(w, r, logMsg, err, eventURL)
		return
	}

	h.AuditLog.ParticipationAction(ctx, eventType, userID, userID, h.lookupOrgID(ctx, eventID), eventID, nil)
	http.Redirect(w, r, eventURL, http.StatusSeeOther)
}

// adminAction runs an action an org admin takes on another user's
// enrollment. The service re-checks that the actor administers the
// owning organization; the target user ID comes from the path.
func (h *Handler) adminAction(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, eventID, targetID, actorID primitive.ObjectID) error,
	eventType, logMsg string,
	onSuccess func(ctx context.Context, eventID, targetID primitive.ObjectID),
) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}
	eventURL := "/events/" + eventID.Hex()

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid user.", eventURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := op(ctx, eventID, targetID, actorID); err != nil {
		h.ErrLog.LogFault(w, r, logMsg, err, eventURL)
		return
	}

	h.AuditLog.ParticipationAction(ctx, eventType, actorID, targetID, h.lookupOrgID(ctx, eventID), eventID, nil)
	if onSuccess != nil {
		onSuccess(ctx, eventID, targetID)
	}
	http.Redirect(w, r, eventURL, http.StatusSeeOther)
}

func parseEventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Event not found.", "/dashboard")
		return primitive.NilObjectID, false
	}
	return id, true
}

// lookupOrgID resolves the owning organization for the audit row.
// Best-effort: a zero ID is recorded when the lookup fails.
func (h *Handler) lookupOrgID(ctx context.Context, eventID primitive.ObjectID) primitive.ObjectID {
	ev, err := eventstore.New(h.DB).GetByID(ctx, eventID)
	if err != nil {
		h.Log.Warn("resolve org for audit failed", zap.Error(err),
			zap.String("event_id", eventID.Hex()))
		return primitive.NilObjectID
	}
	return ev.OrganizationID
}

// sendAcceptanceEmail notifies a newly accepted participant. Best-effort:
// a mail failure never surfaces to the admin who clicked accept.
func (h *Handler) sendAcceptanceEmail(ctx context.Context, eventID, targetID primitive.ObjectID) {
	if !h.Mailer.Enabled() {
		return
	}

	u, err := userstore.New(h.DB).GetByID(ctx, targetID)
	if err != nil {
		h.Log.Warn("load user for acceptance email failed", zap.Error(err),
			zap.String("user_id", targetID.Hex()))
		return
	}

	eventName := ""
	if ev, err := eventstore.New(h.DB).GetByID(ctx, eventID); err == nil {
		eventName = ev.Name
	}

	email := mailer.BuildAcceptanceEmail(mailer.AcceptanceEmailData{
		SiteName: viewdata.SiteName,
		Name:     u.Name,
		Target:   eventName,
		Kind:     "event",
		Link:     h.BaseURL + "/events/" + eventID.Hex(),
	})
	email.To = u.Email

	if err := h.Mailer.Send(ctx, email); err != nil {
		h.Log.Warn("send acceptance email failed", zap.Error(err),
			zap.String("user_id", targetID.Hex()))
	}
}
