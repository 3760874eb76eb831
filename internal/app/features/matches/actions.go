// internal/app/features/matches/actions.go
package matches

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleSubmitScore handles POST /matches/{id}/score. The scores field
// is a comma-separated list of integers, one per player in position
// order. Submitting replaces the player's earlier claim; when every
// player's current claim agrees byte-for-byte the match completes.
func (h *Handler) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}
	matchURL := "/matches/" + matchID.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", matchURL)
		return
	}
	scores, err := parseScores(r.FormValue("scores"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Scores must be a comma-separated list of whole numbers.", matchURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Service.SubmitScore(ctx, matchID, userID, scores)
	if err != nil {
		h.ErrLog.LogFault(w, r, "submit score failed", err, matchURL)
		return
	}

	h.AuditLog.MatchAction(ctx, audit.EventScoreSubmitted, userID, matchID, m.EventID, map[string]string{
		"scores": matchstore.EncodeScores(scores),
	})
	if m.Status == models.MatchCompleted {
		h.AuditLog.MatchAction(ctx, audit.EventMatchCompleted, userID, matchID, m.EventID, map[string]string{
			"via": "consensus",
		})
	}

	http.Redirect(w, r, matchURL, http.StatusSeeOther)
}

// HandleFinalize handles POST /matches/{id}/finalize. The admin picks a
// live submission and its scores are applied without unanimity.
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}
	matchURL := "/matches/" + matchID.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", matchURL)
		return
	}
	submissionID, err := primitive.ObjectIDFromHex(r.FormValue("submission"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid submission.", matchURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Service.FinalizeWithSubmission(ctx, matchID, submissionID, actorID)
	if err != nil {
		h.ErrLog.LogFault(w, r, "finalize match failed", err, matchURL)
		return
	}

	h.AuditLog.MatchAction(ctx, audit.EventMatchCompleted, actorID, matchID, m.EventID, map[string]string{
		"via":        "admin_finalize",
		"submission": submissionID.Hex(),
	})

	http.Redirect(w, r, matchURL, http.StatusSeeOther)
}

// HandleSetStatus handles POST /matches/{id}/status, the direct
// administrative override. It is the only path that can reopen a
// completed or forfeit match.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}
	matchURL := "/matches/" + matchID.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", matchURL)
		return
	}
	matchStatus := r.FormValue("status")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Service.SetStatus(ctx, matchID, matchStatus, actorID); err != nil {
		h.ErrLog.LogFault(w, r, "set match status failed", err, matchURL)
		return
	}

	eventID := primitive.NilObjectID
	if m, err := matchstore.New(h.DB).GetByID(ctx, matchID); err == nil {
		eventID = m.EventID
	} else {
		h.Log.Warn("resolve event for audit failed", zap.Error(err),
			zap.String("match_id", matchID.Hex()))
	}
	h.AuditLog.MatchAction(ctx, audit.EventMatchStatusSet, actorID, matchID, eventID, map[string]string{
		"status": matchStatus,
	})

	http.Redirect(w, r, matchURL, http.StatusSeeOther)
}

func parseMatchID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Match not found.", "/dashboard")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseScores parses "3,1" style input into the score array the
// consensus protocol compares.
func parseScores(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	scores := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		scores = append(scores, n)
	}
	return scores, nil
}
