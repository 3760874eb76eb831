package participantstore_test

import (
	"errors"
	"testing"

	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	user := fixtures.CreateUser(ctx, "Player", "player@example.com")

	if err := store.Add(ctx, event.ID, user.ID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	exists, err := store.Exists(ctx, event.ID, user.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected participant after Add")
	}

	err = store.Add(ctx, event.ID, user.ID)
	if !errors.Is(err, participantstore.ErrDuplicateParticipant) {
		t.Errorf("expected ErrDuplicateParticipant, got %v", err)
	}
}

func TestStore_EnsureStats_CreatesOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	user := fixtures.CreateUser(ctx, "Player", "player@example.com")

	if err := store.EnsureStats(ctx, event.ID, user.ID); err != nil {
		t.Fatalf("EnsureStats failed: %v", err)
	}

	stats, err := store.GetStats(ctx, event.ID, user.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.MMR != models.DefaultMMR {
		t.Errorf("MMR: got %d, want %d", stats.MMR, models.DefaultMMR)
	}

	// Re-enrollment after a ban keeps the original stats row.
	if err := store.EnsureStats(ctx, event.ID, user.ID); err != nil {
		t.Fatalf("second EnsureStats failed: %v", err)
	}
	all, err := store.ListStatsByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListStatsByEvent failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("stats rows: got %d, want 1", len(all))
	}
}

func TestStore_ListStatsByEvent_SortsByRating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	// Three players seeded at the default rating, then nudged apart.
	ratings := map[string]int{"Alice": 1480, "Bob": 1560, "Carol": 1520}
	ids := make(map[string]primitive.ObjectID, len(ratings))
	for name, mmr := range ratings {
		u := fixtures.CreateUser(ctx, name, name+"@example.com")
		if err := store.EnsureStats(ctx, event.ID, u.ID); err != nil {
			t.Fatalf("EnsureStats failed: %v", err)
		}
		_, err := db.Collection("event_player_stats").UpdateOne(ctx,
			bson.M{"event_id": event.ID, "user_id": u.ID},
			bson.M{"$set": bson.M{"mmr": mmr}})
		if err != nil {
			t.Fatalf("seed mmr failed: %v", err)
		}
		ids[name] = u.ID
	}

	rows, err := store.ListStatsByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListStatsByEvent failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	wantOrder := []primitive.ObjectID{ids["Bob"], ids["Carol"], ids["Alice"]}
	for i, want := range wantOrder {
		if rows[i].UserID != want {
			t.Errorf("row %d: got user %s, want %s", i, rows[i].UserID.Hex(), want.Hex())
		}
	}
}

func TestStore_Remove_KeepsStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	user := fixtures.CreateUser(ctx, "Player", "player@example.com")
	fixtures.CreateParticipant(ctx, event.ID, user.ID)

	n, err := store.Remove(ctx, event.ID, user.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed count: got %d, want 1", n)
	}

	exists, err := store.Exists(ctx, event.ID, user.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected participant removed")
	}

	// Stats survive removal for history and potential re-entry.
	if _, err := store.GetStats(ctx, event.ID, user.ID); err != nil {
		t.Errorf("expected stats to survive removal, got %v", err)
	}
}

func TestStore_RemoveFromEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	eventA := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	eventB := fixtures.CreateEvent(ctx, org.ID, "Summer Cup")
	other := fixtures.CreateEvent(ctx, org.ID, "Autumn Clash")
	user := fixtures.CreateUser(ctx, "Player", "player@example.com")
	fixtures.CreateParticipant(ctx, eventA.ID, user.ID)
	fixtures.CreateParticipant(ctx, eventB.ID, user.ID)
	fixtures.CreateParticipant(ctx, other.ID, user.ID)

	n, err := store.RemoveFromEvents(ctx, []primitive.ObjectID{eventA.ID, eventB.ID}, user.ID)
	if err != nil {
		t.Fatalf("RemoveFromEvents failed: %v", err)
	}
	if n != 2 {
		t.Errorf("removed count: got %d, want 2", n)
	}

	exists, err := store.Exists(ctx, other.ID, user.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected untouched event to keep its participant")
	}
}

func TestStore_CountMatching(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	a := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	b := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	fixtures.CreateParticipant(ctx, event.ID, a.ID)
	fixtures.CreateParticipant(ctx, event.ID, b.ID)

	outsider := primitive.NewObjectID()
	n, err := store.CountMatching(ctx, event.ID, []primitive.ObjectID{a.ID, b.ID, outsider})
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if n != 2 {
		t.Errorf("matching count: got %d, want 2", n)
	}
}
