package organizationstore_test

import (
	"errors"
	"testing"

	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")

	created, err := store.Create(ctx, models.Organization{
		Name:       "Midwest Chess League",
		Visibility: models.VisibilityPublic,
		CreatorID:  creator.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "midwest chess league" {
		t.Errorf("NameCI: got %q", created.NameCI)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")

	_, err := store.Create(ctx, models.Organization{
		Name:       "Midwest Chess League",
		Visibility: models.VisibilityPublic,
		CreatorID:  creator.ID,
	})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err = store.Create(ctx, models.Organization{
		Name:       "MIDWEST chess LEAGUE",
		Visibility: models.VisibilityOpen,
		CreatorID:  creator.ID,
	})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err == nil {
		t.Error("expected error for unknown ID")
	}
}

func TestStore_ListVisible_ExcludesHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	fixtures.CreateOrganizationWithVisibility(ctx, "Public Org", models.VisibilityPublic, creator.ID)
	fixtures.CreateOrganizationWithVisibility(ctx, "Open Org", models.VisibilityOpen, creator.ID)
	fixtures.CreateOrganizationWithVisibility(ctx, "Hidden Org", models.VisibilityHidden, creator.ID)

	orgs, err := store.ListVisible(ctx)
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("visible orgs: got %d, want 2", len(orgs))
	}
	for _, org := range orgs {
		if org.Visibility == models.VisibilityHidden {
			t.Errorf("hidden org %q leaked into the listing", org.Name)
		}
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)

	org.Description = "Updated description"
	org.Visibility = models.VisibilityPrivate
	if err := store.Update(ctx, org.ID, org); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Updated description" {
		t.Errorf("Description: got %q", got.Description)
	}
	if got.Visibility != models.VisibilityPrivate {
		t.Errorf("Visibility: got %q", got.Visibility)
	}
}
