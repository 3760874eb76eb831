package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a verified, active user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "password",
		Verified:   true,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateOrganization inserts an organization created by creatorID. The
// creator's admin membership row is inserted alongside, matching what the
// membership service does on creation.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string, creatorID primitive.ObjectID) models.Organization {
	return f.CreateOrganizationWithVisibility(ctx, name, models.VisibilityPublic, creatorID)
}

// CreateOrganizationWithVisibility inserts an organization with an
// explicit visibility level.
func (f *Fixtures) CreateOrganizationWithVisibility(ctx context.Context, name, visibility string, creatorID primitive.ObjectID) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Visibility: visibility,
		CreatorID:  creatorID,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	f.CreateMembership(ctx, org.ID, creatorID, models.RoleAdmin)
	return org
}

// CreateMembership inserts a membership row with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, orgID, userID primitive.ObjectID, role string) models.OrgMembership {
	f.t.Helper()

	m := models.OrgMembership{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("org_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateEvent inserts a public event under the organization.
func (f *Fixtures) CreateEvent(ctx context.Context, orgID primitive.ObjectID, name string) models.Event {
	return f.CreateEventWithVisibility(ctx, orgID, name, models.VisibilityPublic)
}

// CreateEventWithVisibility inserts an event with an explicit visibility.
func (f *Fixtures) CreateEventWithVisibility(ctx context.Context, orgID primitive.ObjectID, name, visibility string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Name:           name,
		NameCI:         text.Fold(name),
		Visibility:     visibility,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateParticipant enrolls the user in the event, including the stats
// row the participation service would lazily create.
func (f *Fixtures) CreateParticipant(ctx context.Context, eventID, userID primitive.ObjectID) models.EventParticipant {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.EventParticipant{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("event_participants").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test participant: %v", err)
	}
	stats := models.PlayerEventStats{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		MMR:       models.DefaultMMR,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("event_player_stats").InsertOne(ctx, stats); err != nil {
		f.t.Fatalf("failed to create test player stats: %v", err)
	}
	return p
}

// CreateMatch inserts a pending match with one player row per ID, in
// caller order.
func (f *Fixtures) CreateMatch(ctx context.Context, eventID primitive.ObjectID, playerIDs ...primitive.ObjectID) models.Match {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Match{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Status:    models.MatchPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("matches").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test match: %v", err)
	}
	for i, uid := range playerIDs {
		p := models.MatchPlayer{
			ID:       primitive.NewObjectID(),
			MatchID:  m.ID,
			UserID:   uid,
			Position: i + 1,
		}
		if _, err := f.db.Collection("match_players").InsertOne(ctx, p); err != nil {
			f.t.Fatalf("failed to create test match player: %v", err)
		}
	}
	return m
}

// CreateOrgBan inserts an active org-level ban.
func (f *Fixtures) CreateOrgBan(ctx context.Context, orgID, userID primitive.ObjectID) models.OrgBan {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.OrgBan{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		UserID:    userID,
		Status:    models.BanActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("org_bans").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test org ban: %v", err)
	}
	return b
}

// CreateEventBan inserts an active event-level ban.
func (f *Fixtures) CreateEventBan(ctx context.Context, eventID, userID primitive.ObjectID) models.EventBan {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.EventBan{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Status:    models.BanActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("event_bans").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test event ban: %v", err)
	}
	return b
}

// CreateOrgApplication inserts a pending org application.
func (f *Fixtures) CreateOrgApplication(ctx context.Context, orgID, userID primitive.ObjectID) models.OrgApplication {
	f.t.Helper()

	a := models.OrgApplication{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		UserID:    userID,
		AppliedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("org_applications").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test org application: %v", err)
	}
	return a
}

// CreateEventApplication inserts a pending event application.
func (f *Fixtures) CreateEventApplication(ctx context.Context, eventID, userID primitive.ObjectID) models.EventApplication {
	f.t.Helper()

	a := models.EventApplication{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		AppliedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("event_applications").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test event application: %v", err)
	}
	return a
}
