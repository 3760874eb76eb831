// internal/app/features/matches/new.go
package matches

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeNew renders the "New Match" form for GET /matches/new?event={hex}.
// Only admins of the owning organization may create matches; the form
// offers the event's current participants as player slots.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.resolveAdminEvent(ctx, w, r, r.URL.Query().Get("event"))
	if !ok {
		return
	}
	eventURL := "/events/" + ev.ID.Hex()

	options, err := h.participantOptions(ctx, ev.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load participants failed", err, "Unable to load participants.", eventURL)
		return
	}

	data := newData{
		EventID:      ev.ID.Hex(),
		EventName:    ev.Name,
		Participants: options,
	}
	formutil.SetBase(&data.Base, r, "New Match", eventURL)

	templates.Render(w, r, "match_new", data)
}

// HandleCreate processes the New Match form submission. Player order in
// the form fixes each player's position, which later aligns submitted
// score arrays.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.resolveAdminEvent(ctx, w, r, r.FormValue("event"))
	if !ok {
		return
	}
	_, actorID, _ := authz.UserCtx(r)
	eventURL := "/events/" + ev.ID.Hex()

	playerIDs := make([]primitive.ObjectID, 0, len(r.PostForm["players"]))
	for _, hex := range r.PostForm["players"] {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid player selection.", eventURL)
			return
		}
		playerIDs = append(playerIDs, id)
	}

	created, err := h.Service.Create(ctx, ev.ID, playerIDs, actorID)
	if err != nil {
		h.ErrLog.LogFault(w, r, "create match failed", err, eventURL)
		return
	}

	h.AuditLog.MatchAction(ctx, audit.EventMatchCreated, actorID, created.ID, ev.ID, map[string]string{
		"players": encodePlayerIDs(playerIDs),
	})

	http.Redirect(w, r, "/matches/"+created.ID.Hex(), http.StatusSeeOther)
}

// resolveAdminEvent resolves the event query/form parameter and checks
// that the signed-in user administers its owning organization. It writes
// the error response and returns ok=false on failure.
func (h *Handler) resolveAdminEvent(ctx context.Context, w http.ResponseWriter, r *http.Request, hex string) (models.Event, bool) {
	eventID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Event not found.", "/dashboard")
		return models.Event{}, false
	}

	ev, err := eventstore.New(h.DB).GetByID(ctx, eventID)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Event not found.", "/dashboard")
		return models.Event{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load event failed", err, "Unable to load event.", "/dashboard")
		return models.Event{}, false
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return models.Event{}, false
	}
	admin, err := eventpolicy.IsAdmin(ctx, h.DB, ev, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve event role failed", err, "Unable to load event.", "/dashboard")
		return models.Event{}, false
	}
	if !admin {
		uierrors.RenderForbidden(w, r, "Only organization admins can manage matches.", "/events/"+ev.ID.Hex())
		return models.Event{}, false
	}
	return ev, true
}

func (h *Handler) participantOptions(ctx context.Context, eventID primitive.ObjectID) ([]playerOption, error) {
	rows, err := participantstore.New(h.DB).ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	options := make([]playerOption, 0, len(rows))
	for _, p := range rows {
		options = append(options, playerOption{UserID: p.UserID, Name: nameByID[p.UserID]})
	}
	return options, nil
}

func encodePlayerIDs(ids []primitive.ObjectID) string {
	hexes := make([]string, 0, len(ids))
	for _, id := range ids {
		hexes = append(hexes, id.Hex())
	}
	return strings.Join(hexes, ",")
}
