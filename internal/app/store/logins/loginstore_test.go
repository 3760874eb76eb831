package loginstore_test

import (
	"net/http/httptest"
	"testing"

	loginstore "github.com/dalemusser/arenahub/internal/app/store/logins"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateFrom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "test-agent")

	if err := store.CreateFrom(ctx, r, userID, models.AuthMethodPassword); err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}

	recs, err := store.RecentByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("RecentByUser failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records: got %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.IP != "203.0.113.7" {
		t.Errorf("IP: got %q, want %q", rec.IP, "203.0.113.7")
	}
	if rec.UserAgent != "test-agent" {
		t.Errorf("UserAgent: got %q", rec.UserAgent)
	}
	if rec.Method != models.AuthMethodPassword {
		t.Errorf("Method: got %q", rec.Method)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_RecentByUser_OrderAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/login", nil)
		if err := store.CreateFrom(ctx, r, userID, models.AuthMethodPassword); err != nil {
			t.Fatalf("CreateFrom failed: %v", err)
		}
	}

	recs, err := store.RecentByUser(ctx, userID, 3)
	if err != nil {
		t.Fatalf("RecentByUser failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records: got %d, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].CreatedAt.After(recs[i-1].CreatedAt) {
			t.Error("expected newest-first ordering")
		}
	}
}
