// internal/app/features/events/view.go
package events

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	applicationstore "github.com/dalemusser/arenahub/internal/app/store/applications"
	banstore "github.com/dalemusser/arenahub/internal/app/store/bans"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeView handles GET /events/{id}. Visibility gating happens in the
// participation service: a hidden event reads as not-found to anyone who
// is neither a participant nor an org admin.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, userID, _ := authz.UserCtx(r)

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Event not found.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := h.Service.ViewEvent(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "Event not found.", "/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "load event failed", err, "Unable to load event.", "/dashboard")
		return
	}

	org, err := organizationstore.New(h.DB).GetByID(ctx, ev.OrganizationID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load owning organization failed", err, "Unable to load event.", "/dashboard")
		return
	}

	isAdmin, err := eventpolicy.IsAdmin(ctx, h.DB, ev, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve event role failed", err, "Unable to load event.", "/dashboard")
		return
	}
	isParticipant, err := eventpolicy.IsParticipant(ctx, h.DB, ev.ID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve participation failed", err, "Unable to load event.", "/dashboard")
		return
	}
	canApply := false
	if !userID.IsZero() && !isParticipant {
		canApply, err = eventpolicy.CanApply(ctx, h.DB, org, ev, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "resolve apply permission failed", err, "Unable to load event.", "/dashboard")
			return
		}
	}

	data := viewData{
		BaseVM:          viewdata.NewBaseVM(r, ev.Name, "/organizations/"+org.ID.Hex()),
		ID:              ev.ID.Hex(),
		Name:            ev.Name,
		DescriptionHTML: htmlsanitize.PrepareForDisplay(ev.Description),
		Visibility:      ev.Visibility,
		Status:          ev.Status,
		LowestScoreWins: ev.LowestScoreWins,
		OrgID:           org.ID.Hex(),
		OrgName:         org.Name,
		IsAdmin:         isAdmin,
		IsParticipant:   isParticipant,
		CanApply:        canApply,
	}

	names, err := h.loadStandings(ctx, ev.ID, &data)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load standings failed", err, "Unable to load event.", "/dashboard")
		return
	}

	if err := h.loadMatches(ctx, ev.ID, names, &data); err != nil {
		h.ErrLog.LogServerError(w, r, "load matches failed", err, "Unable to load event.", "/dashboard")
		return
	}

	if isAdmin {
		if err := h.loadAdminPanels(ctx, ev.ID, &data); err != nil {
			// Admin panels are secondary; log and render without them.
			h.Log.Warn("load admin panels failed", zap.Error(err),
				zap.String("event_id", ev.ID.Hex()))
		}
	}

	templates.Render(w, r, "event_view", data)
}

// loadStandings builds the participant roster sorted by rating, and
// returns the display-name index reused by the match list.
func (h *Handler) loadStandings(ctx context.Context, eventID primitive.ObjectID, data *viewData) (map[primitive.ObjectID]string, error) {
	participants := participantstore.New(h.DB)

	rows, err := participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats, err := participants.ListStatsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	statsByID := make(map[primitive.ObjectID]models.PlayerEventStats, len(stats))
	for _, st := range stats {
		statsByID[st.UserID] = st
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.UserID)
	}
	names, err := h.userNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		st := statsByID[p.UserID]
		data.Standings = append(data.Standings, standingRow{
			UserID:        p.UserID,
			Name:          names[p.UserID],
			MMR:           st.MMR,
			MatchesPlayed: st.MatchesPlayed,
			Wins:          st.Wins,
			Losses:        st.Losses,
		})
	}
	sort.SliceStable(data.Standings, func(i, j int) bool {
		return data.Standings[i].MMR > data.Standings[j].MMR
	})
	return names, nil
}

func (h *Handler) loadMatches(ctx context.Context, eventID primitive.ObjectID, names map[primitive.ObjectID]string, data *viewData) error {
	store := matchstore.New(h.DB)

	rows, err := store.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	for _, m := range rows {
		players, err := store.Players(ctx, m.ID)
		if err != nil {
			return err
		}
		labels := make([]string, 0, len(players))
		for _, p := range players {
			name := names[p.UserID]
			if name == "" {
				// Players removed from the event keep their match history.
				name = p.UserID.Hex()
			}
			labels = append(labels, name)
		}
		data.Matches = append(data.Matches, matchRow{
			ID:      m.ID,
			Status:  m.Status,
			Players: strings.Join(labels, ", "),
		})
	}
	return nil
}

func (h *Handler) loadAdminPanels(ctx context.Context, eventID primitive.ObjectID, data *viewData) error {
	apps, err := applicationstore.New(h.DB).ListEvent(ctx, eventID)
	if err != nil {
		return err
	}
	bans, err := banstore.New(h.DB).ListEventBans(ctx, eventID, models.BanActive)
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
	names, err := h.userNames(ctx, ids)
	if err != nil {
		return err
	}

	for _, a := range apps {
		data.Applicants = append(data.Applicants, applicantRow{UserID: a.UserID, Name: names[a.UserID]})
	}
	for _, b := range bans {
		data.Banned = append(data.Banned, applicantRow{UserID: b.UserID, Name: names[b.UserID]})
	}
	return nil
}

func (h *Handler) userNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Name
	}
	return byID, nil
}
