// internal/app/features/matches/view.go
package matches

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/app/policy/matchpolicy"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeView handles GET /matches/{id}. Visibility follows the owning
// event: a match in a hidden event reads as not-found to anyone who is
// neither a participant nor an org admin.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, userID, _ := authz.UserCtx(r)

	matchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Match not found.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, players, err := h.Service.ViewMatch(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "Match not found.", "/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "load match failed", err, "Unable to load match.", "/dashboard")
		return
	}

	ev, err := eventstore.New(h.DB).GetByID(ctx, m.EventID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load owning event failed", err, "Unable to load match.", "/dashboard")
		return
	}

	isAdmin, err := eventpolicy.IsAdmin(ctx, h.DB, ev, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve match role failed", err, "Unable to load match.", "/dashboard")
		return
	}
	canSubmit, err := matchpolicy.CanSubmitScore(ctx, h.DB, m, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve submit permission failed", err, "Unable to load match.", "/dashboard")
		return
	}

	data := viewData{
		BaseVM:          viewdata.NewBaseVM(r, "Match", "/events/"+ev.ID.Hex()),
		ID:              m.ID.Hex(),
		Status:          m.Status,
		EventID:         ev.ID.Hex(),
		EventName:       ev.Name,
		LowestScoreWins: ev.LowestScoreWins,
		IsAdmin:         isAdmin,
		CanSubmit:       canSubmit,
	}

	if err := h.loadPlayers(ctx, m, players, &data); err != nil {
		h.ErrLog.LogServerError(w, r, "load players failed", err, "Unable to load match.", "/dashboard")
		return
	}

	templates.Render(w, r, "match_view", data)
}

// loadPlayers fills the player rows in position order and, for pending
// matches, the live submissions shown to admins as finalize targets.
func (h *Handler) loadPlayers(ctx context.Context, m models.Match, players []models.MatchPlayer, data *viewData) error {
	ids := make([]primitive.ObjectID, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.UserID)
	}
	users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	store := matchstore.New(h.DB)
	subs, err := store.RecentSubmissions(ctx, m.ID, int64(len(players)))
	if err != nil {
		return err
	}
	claimed := make(map[primitive.ObjectID]bool, len(subs))
	for _, sub := range subs {
		claimed[sub.UserID] = true
	}

	for _, p := range players {
		data.Players = append(data.Players, playerRow{
			UserID:     p.UserID,
			Name:       nameByID[p.UserID],
			Position:   p.Position,
			FinalScore: p.FinalScore,
			HasClaimed: claimed[p.UserID],
		})
	}

	if data.IsAdmin && m.Status == models.MatchPending {
		for _, sub := range subs {
			name := nameByID[sub.UserID]
			if name == "" {
				name = sub.UserID.Hex()
			}
			data.Submissions = append(data.Submissions, submissionRow{
				ID:          sub.ID,
				Name:        name,
				Scores:      sub.RawScores,
				SubmittedAt: sub.SubmittedAt,
			})
		}
	}
	return nil
}
