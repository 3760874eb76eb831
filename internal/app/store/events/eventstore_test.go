package eventstore_test

import (
	"errors"
	"testing"

	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)

	created, err := store.Create(ctx, models.Event{
		OrganizationID:  org.ID,
		Name:            "Spring Open",
		Visibility:      models.VisibilityPublic,
		LowestScoreWins: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "spring open" {
		t.Errorf("NameCI: got %q", created.NameCI)
	}
	if !created.LowestScoreWins {
		t.Error("expected LowestScoreWins to persist")
	}
}

func TestStore_Create_DuplicateNameScopedToOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	orgA := fixtures.CreateOrganization(ctx, "Org A", creator.ID)
	orgB := fixtures.CreateOrganization(ctx, "Org B", creator.ID)

	if _, err := store.Create(ctx, models.Event{OrganizationID: orgA.ID, Name: "Spring Open", Visibility: models.VisibilityPublic}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Event{OrganizationID: orgA.ID, Name: "SPRING open", Visibility: models.VisibilityPublic})
	if !errors.Is(err, eventstore.ErrDuplicateEvent) {
		t.Errorf("expected ErrDuplicateEvent, got %v", err)
	}

	// Same name in a different organization is fine.
	if _, err := store.Create(ctx, models.Event{OrganizationID: orgB.ID, Name: "Spring Open", Visibility: models.VisibilityPublic}); err != nil {
		t.Errorf("Create in other org failed: %v", err)
	}
}

func TestStore_IDsByOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	other := fixtures.CreateOrganization(ctx, "Other Org", creator.ID)
	a := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	b := fixtures.CreateEvent(ctx, org.ID, "Summer Cup")
	fixtures.CreateEvent(ctx, other.ID, "Elsewhere")

	ids, err := store.IDsByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("IDsByOrg failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("event IDs: got %d, want 2", len(ids))
	}
	want := map[primitive.ObjectID]bool{a.ID: true, b.ID: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected event ID %v", id)
		}
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	event.Description = "Round robin, best of three"
	event.Visibility = models.VisibilityHidden
	if err := store.Update(ctx, event.ID, event); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Round robin, best of three" {
		t.Errorf("Description: got %q", got.Description)
	}
	if got.Visibility != models.VisibilityHidden {
		t.Errorf("Visibility: got %q", got.Visibility)
	}
}
