package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/arenahub/internal/app/store/memberships"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")

	m, err := store.Add(ctx, org.ID, user.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if m.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if m.Role != models.RoleMember {
		t.Errorf("Role: got %q, want %q", m.Role, models.RoleMember)
	}
	if m.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")

	if _, err := store.Add(ctx, org.ID, user.ID, models.RoleMember); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	_, err := store.Add(ctx, org.ID, user.ID, models.RoleAdmin)
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("expected ErrDuplicateMembership, got %v", err)
	}
}

func TestStore_Add_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "owner")
	if err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestStore_Promote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleMember)

	if err := store.Promote(ctx, org.ID, user.ID); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	role, err := store.GetRole(ctx, org.ID, user.ID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role != models.RoleAdmin {
		t.Errorf("role after promote: got %q, want %q", role, models.RoleAdmin)
	}
}

func TestStore_Promote_NonMemberBecomesAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	if err := store.Promote(ctx, org.ID, outsider.ID); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	role, err := store.GetRole(ctx, org.ID, outsider.ID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role != models.RoleAdmin {
		t.Errorf("role: got %q, want %q", role, models.RoleAdmin)
	}
}

func TestStore_Promote_AlreadyAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleAdmin)

	err := store.Promote(ctx, org.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrAlreadyAdmin) {
		t.Errorf("expected ErrAlreadyAdmin, got %v", err)
	}
}

func TestStore_Demote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleAdmin)

	if err := store.Demote(ctx, org.ID, user.ID); err != nil {
		t.Fatalf("Demote failed: %v", err)
	}

	role, err := store.GetRole(ctx, org.ID, user.ID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role != models.RoleMember {
		t.Errorf("role after demote: got %q, want %q", role, models.RoleMember)
	}
}

func TestStore_Demote_NotAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleMember)

	err := store.Demote(ctx, org.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleMember)

	n, err := store.Remove(ctx, org.ID, user.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed count: got %d, want 1", n)
	}

	_, err = store.GetRole(ctx, org.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrNoMembership) {
		t.Errorf("expected ErrNoMembership after remove, got %v", err)
	}
}

func TestStore_Remove_NoMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Remove(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n != 0 {
		t.Errorf("removed count: got %d, want 0", n)
	}
}

func TestStore_ListByOrg_RoleFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	for i, role := range []string{models.RoleAdmin, models.RoleMember, models.RoleMember} {
		u := fixtures.CreateUser(ctx, "User", "user"+string(rune('a'+i))+"@example.com")
		fixtures.CreateMembership(ctx, org.ID, u.ID, role)
	}

	admins, err := store.ListByOrg(ctx, org.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("ListByOrg failed: %v", err)
	}
	// The creator fixture inserts an admin membership too.
	if len(admins) != 2 {
		t.Errorf("admins: got %d, want 2", len(admins))
	}

	all, err := store.ListByOrg(ctx, org.ID, "")
	if err != nil {
		t.Fatalf("ListByOrg failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all memberships: got %d, want 4", len(all))
	}
}

func TestStore_HasRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleMember)

	ok, err := store.HasRole(ctx, org.ID, user.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("HasRole failed: %v", err)
	}
	if !ok {
		t.Error("expected member role")
	}

	ok, err = store.HasRole(ctx, org.ID, user.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("HasRole failed: %v", err)
	}
	if ok {
		t.Error("did not expect admin role")
	}
}

func TestStore_CountByOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, user.ID, models.RoleMember)

	n, err := store.CountByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("CountByOrg failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}
}
