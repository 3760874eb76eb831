package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger is a no-op, not a panic
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "password", "a@example.com")
	logger.Logout(ctx, req, primitive.NewObjectID().Hex())
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:       "off",
		Membership: "off",
		Match:      "off",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Success:   true,
	})

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	userID := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.LoginSuccess(ctx, req, userID, "password", "user@example.com")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	ev := events[0]
	if ev.EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q", ev.EventType)
	}
	if ev.IP != "203.0.113.9" {
		t.Errorf("IP: got %q", ev.IP)
	}
	if ev.Details["auth_method"] != "password" {
		t.Errorf("auth_method detail: got %q", ev.Details["auth_method"])
	}
}

func TestLogger_Log_ConfigLogOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Membership: "log"})

	logger.MembershipAction(ctx, audit.EventMemberPromoted,
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), nil)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no DB events when config is 'log'")
	}
}

func TestLogger_FailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "all"})
	req := httptest.NewRequest("POST", "/login", nil)

	userID := primitive.NewObjectID()
	logger.LoginFailedUserNotFound(ctx, req, "ghost@example.com")
	logger.LoginFailedWrongPassword(ctx, req, userID, "user@example.com")
	logger.LoginFailedUserDisabled(ctx, req, userID, "user@example.com")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events: got %d, want 3", len(events))
	}
	for _, ev := range events {
		if ev.Success {
			t.Errorf("event %s: expected failure", ev.EventType)
		}
		if ev.FailureReason == "" {
			t.Errorf("event %s: expected a failure reason", ev.EventType)
		}
	}
}

func TestLogger_MatchAction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Match: "all"})

	actorID := primitive.NewObjectID()
	matchID := primitive.NewObjectID()
	tournamentEventID := primitive.NewObjectID()
	logger.MatchAction(ctx, audit.EventScoreSubmitted, actorID, matchID, tournamentEventID,
		map[string]string{"scores": "10,8"})

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryMatch})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	ev := events[0]
	if ev.MatchID == nil || *ev.MatchID != matchID {
		t.Errorf("MatchID: got %v", ev.MatchID)
	}
	if ev.EventID == nil || *ev.EventID != tournamentEventID {
		t.Errorf("EventID: got %v", ev.EventID)
	}
	if ev.Details["scores"] != "10,8" {
		t.Errorf("scores detail: got %q", ev.Details["scores"])
	}
}
