package participation_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/service/participation"
	applicationstore "github.com/dalemusser/arenahub/internal/app/store/applications"
	banstore "github.com/dalemusser/arenahub/internal/app/store/bans"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestService_CreateEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)

	ev, err := svc.CreateEvent(ctx, models.Event{
		OrganizationID: org.ID,
		Name:           "Spring Open",
		Visibility:     models.VisibilityPublic,
	}, creator.ID)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if ev.OrganizationID != org.ID {
		t.Errorf("OrganizationID: got %v, want %v", ev.OrganizationID, org.ID)
	}

	// Duplicate name within the org is a conflict.
	_, err = svc.CreateEvent(ctx, models.Event{
		OrganizationID: org.ID,
		Name:           "spring open",
	}, creator.ID)
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestService_CreateEvent_RequiresOrgAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)

	_, err := svc.CreateEvent(ctx, models.Event{
		OrganizationID: org.ID,
		Name:           "Unauthorized Event",
	}, member.ID)
	if !errors.Is(err, fault.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestService_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)

	if err := svc.Apply(ctx, event.ID, member.ID); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	exists, err := applicationstore.New(db).ExistsEvent(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("ExistsEvent failed: %v", err)
	}
	if !exists {
		t.Error("expected pending event application")
	}

	err = svc.Apply(ctx, event.ID, member.ID)
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected ErrConflict on second apply, got %v", err)
	}
}

func TestService_Apply_NonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	err := svc.Apply(ctx, event.ID, outsider.ID)
	if !errors.Is(err, fault.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestService_Apply_OrgBanBlocksEveryEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	// Membership row lingering alongside an active org ban: the ban wins.
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)
	fixtures.CreateOrgBan(ctx, org.ID, member.ID)

	err := svc.Apply(ctx, event.ID, member.ID)
	if !errors.Is(err, fault.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestService_Accept_CreatesStatsLazily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)
	fixtures.CreateEventApplication(ctx, event.ID, member.ID)

	if err := svc.Accept(ctx, event.ID, member.ID, creator.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	participants := participantstore.New(db)
	enrolled, err := participants.Exists(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !enrolled {
		t.Error("expected participant after accept")
	}

	stats, err := participants.GetStats(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.MMR != models.DefaultMMR {
		t.Errorf("MMR: got %d, want %d", stats.MMR, models.DefaultMMR)
	}
}

func TestService_Accept_PreservesStatsOnReenrollment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)
	fixtures.CreateEventApplication(ctx, event.ID, member.ID)

	if err := svc.Accept(ctx, event.ID, member.ID, creator.ID); err != nil {
		t.Fatalf("first Accept failed: %v", err)
	}

	participants := participantstore.New(db)

	// Simulate rating movement, then a removal and re-enrollment.
	if _, err := db.Collection("event_player_stats").UpdateOne(ctx,
		bson.M{"event_id": event.ID, "user_id": member.ID},
		bson.M{"$set": bson.M{"mmr": 1617}},
	); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	if _, err := participants.Remove(ctx, event.ID, member.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	fixtures.CreateEventApplication(ctx, event.ID, member.ID)
	if err := svc.Accept(ctx, event.ID, member.ID, creator.ID); err != nil {
		t.Fatalf("second Accept failed: %v", err)
	}

	stats, err := participants.GetStats(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.MMR != 1617 {
		t.Errorf("MMR after re-enrollment: got %d, want 1617", stats.MMR)
	}
}

func TestService_BanFromEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)
	fixtures.CreateParticipant(ctx, event.ID, member.ID)

	if err := svc.BanFromEvent(ctx, event.ID, member.ID, creator.ID); err != nil {
		t.Fatalf("BanFromEvent failed: %v", err)
	}

	banned, err := banstore.New(db).IsEventBanned(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("IsEventBanned failed: %v", err)
	}
	if !banned {
		t.Error("expected active event ban")
	}

	enrolled, err := participantstore.New(db).Exists(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if enrolled {
		t.Error("expected participant removed")
	}

	// Org-level standing is untouched.
	orgBanned, err := banstore.New(db).IsOrgBanned(ctx, org.ID, member.ID)
	if err != nil {
		t.Fatalf("IsOrgBanned failed: %v", err)
	}
	if orgBanned {
		t.Error("event ban must not create an org ban")
	}
}

func TestService_BanFromEvent_CreatorIsImmune(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")

	err := svc.BanFromEvent(ctx, event.ID, creator.ID, creator.ID)
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestService_UnbanFromEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEvent(ctx, org.ID, "Spring Open")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)
	fixtures.CreateEventBan(ctx, event.ID, member.ID)

	if err := svc.UnbanFromEvent(ctx, event.ID, member.ID, creator.ID); err != nil {
		t.Fatalf("UnbanFromEvent failed: %v", err)
	}

	banned, err := banstore.New(db).IsEventBanned(ctx, event.ID, member.ID)
	if err != nil {
		t.Fatalf("IsEventBanned failed: %v", err)
	}
	if banned {
		t.Error("expected event ban lifted")
	}
}

func TestService_ViewEvent_HiddenDeniedAsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := participation.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Creator", "creator@example.com")
	org := fixtures.CreateOrganization(ctx, "Test Org", creator.ID)
	event := fixtures.CreateEventWithVisibility(ctx, org.ID, "Invite Only", models.VisibilityHidden)
	stranger := fixtures.CreateUser(ctx, "Stranger", "stranger@example.com")

	_, err := svc.ViewEvent(ctx, event.ID, stranger.ID)
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("expected ErrNotFound for hidden event, got %v", err)
	}

	if _, err := svc.ViewEvent(ctx, event.ID, creator.ID); err != nil {
		t.Errorf("expected org admin to view hidden event, got %v", err)
	}
}
