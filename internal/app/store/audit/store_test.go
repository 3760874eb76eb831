package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	orgID := primitive.NewObjectID()

	err := store.Log(ctx, audit.Event{
		Category:       audit.CategoryMembership,
		EventType:      audit.EventMemberKicked,
		UserID:         &userID,
		OrganizationID: &orgID,
		Success:        true,
		Details:        map[string]string{"reason": "inactivity"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{OrganizationID: &orgID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	ev := events[0]
	if ev.EventType != audit.EventMemberKicked {
		t.Errorf("EventType: got %q", ev.EventType)
	}
	if ev.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if ev.Details["reason"] != "inactivity" {
		t.Errorf("Details: got %v", ev.Details)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := primitive.NewObjectID()
	orgB := primitive.NewObjectID()
	matchID := primitive.NewObjectID()
	tournamentEventID := primitive.NewObjectID()

	seed := []audit.Event{
		{Category: audit.CategoryMembership, EventType: audit.EventOrgCreated, OrganizationID: &orgA, Success: true},
		{Category: audit.CategoryMembership, EventType: audit.EventUserBanned, OrganizationID: &orgA, Success: true},
		{Category: audit.CategoryMembership, EventType: audit.EventOrgCreated, OrganizationID: &orgB, Success: true},
		{Category: audit.CategoryMatch, EventType: audit.EventMatchCompleted, MatchID: &matchID, EventID: &tournamentEventID, Success: true},
	}
	for _, ev := range seed {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	byOrg, err := store.Query(ctx, audit.QueryFilter{OrganizationID: &orgA})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(byOrg) != 2 {
		t.Errorf("org filter: got %d, want 2", len(byOrg))
	}

	byType, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventOrgCreated})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("event type filter: got %d, want 2", len(byType))
	}

	byCategory, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryMatch})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(byCategory) != 1 {
		t.Errorf("category filter: got %d, want 1", len(byCategory))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{OrganizationID: &orgA})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &userID, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserID: &userID, Success: false},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedUserNotFound, Success: false},
	}
	for _, ev := range seed {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	failed, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("failed logins: got %d, want 2", len(failed))
	}
	for _, ev := range failed {
		if ev.Success {
			t.Error("expected only failed events")
		}
	}
}

func TestStore_GetByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{userID, userID, other} {
		uid := id
		if err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			UserID:    &uid,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events: got %d, want 2", len(events))
	}
}
