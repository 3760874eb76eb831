// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	membershipstore "github.com/dalemusser/arenahub/internal/app/store/memberships"
	orgstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// pendingMatchLimit caps how many open matches the dashboard surfaces;
// the full list lives on each event page.
const pendingMatchLimit = 10

// Handler serves the signed-in landing page: the user's organizations,
// the events they play in, and their open matches. There are no
// role-specific dashboards; org and event roles only shape the pages
// of the organizations themselves.
type Handler struct {
	DB           *mongo.Database
	Log          *zap.Logger
	ErrLog       *uierrors.ErrorLogger
	Orgs         *orgstore.Store
	Events       *eventstore.Store
	Matches      *matchstore.Store
	Memberships  *membershipstore.Store
	Participants *participantstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		ErrLog:       errLog,
		Orgs:         orgstore.New(db),
		Events:       eventstore.New(db),
		Matches:      matchstore.New(db),
		Memberships:  membershipstore.New(db),
		Participants: participantstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type orgRow struct {
	Org  models.Organization
	Role string
}

type matchRow struct {
	Match     models.Match
	EventName string
}

type dashboardData struct {
	viewdata.BaseVM
	Organizations  []orgRow
	Events         []models.Event
	PendingMatches []matchRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
	}

	orgs, err := h.loadOrganizations(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load dashboard organizations failed", err,
			"A server error occurred while loading your dashboard.", "/")
		return
	}
	data.Organizations = orgs

	events, err := h.loadEvents(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load dashboard events failed", err,
			"A server error occurred while loading your dashboard.", "/")
		return
	}
	data.Events = events

	pending, err := h.loadPendingMatches(ctx, userID, events)
	if err != nil {
		// Matches are the least critical panel; render without them.
		h.Log.Warn("load pending matches failed", zap.Error(err),
			zap.String("user_id", userID.Hex()))
	}
	data.PendingMatches = pending

	templates.Render(w, r, "dashboard", data)
}

// loadOrganizations resolves the user's memberships into org rows with the
// effective role (creator outranks the stored admin role).
func (h *Handler) loadOrganizations(ctx context.Context, userID primitive.ObjectID) ([]orgRow, error) {
	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	roleByOrg := make(map[primitive.ObjectID]string, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrgID)
		roleByOrg[m.OrgID] = m.Role
	}

	orgs, err := h.Orgs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]orgRow, 0, len(orgs))
	for _, org := range orgs {
		role := roleByOrg[org.ID]
		if org.CreatorID == userID {
			role = string(orgpolicy.RoleCreator)
		}
		rows = append(rows, orgRow{Org: org, Role: role})
	}
	return rows, nil
}

func (h *Handler) loadEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	rows, err := h.Participants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.EventID)
	}
	return h.Events.GetByIDs(ctx, ids)
}

func (h *Handler) loadPendingMatches(ctx context.Context, userID primitive.ObjectID, events []models.Event) ([]matchRow, error) {
	matches, err := h.Matches.ListPendingByUser(ctx, userID, pendingMatchLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	nameByEvent := make(map[primitive.ObjectID]string, len(events))
	for _, ev := range events {
		nameByEvent[ev.ID] = ev.Name
	}

	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow{Match: m, EventName: nameByEvent[m.EventID]})
	}
	return rows, nil
}
