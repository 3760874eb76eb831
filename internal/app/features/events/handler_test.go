package events_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/features/events"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*events.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := events.NewHandler(db, uierrors.NewErrorLogger(logger), nil, nil,
		"http://localhost:8080", logger)
	return h, db
}

// serve runs a handler func and swallows the template-engine panic; the
// status code written before the render attempt still tells success from
// failure.
func serve(fn http.HandlerFunc, rec *testutil.ResponseRecorder, req *http.Request) {
	defer func() { _ = recover() }()
	fn(rec.ResponseRecorder, req)
}

func postForm(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func countDocs(t *testing.T, db *mongo.Database, coll string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("count %s failed: %v", coll, err)
	}
	return n
}

func TestServeView_PublicEvent(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")

	rec := testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodGet, "/events/"+ev.ID.Hex())
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	serve(h.ServeView, rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestServeView_HiddenEvent_NonParticipant(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	outsider := f.CreateUser(ctx, "Outsider", "outsider@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	ev := f.CreateEventWithVisibility(ctx, org.ID, "Invitational", models.VisibilityHidden)

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/events/"+ev.ID.Hex(),
		testutil.UserWithID(outsider.ID, outsider.Name, outsider.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	serve(h.ServeView, rec, req)

	// Hidden events read as not-found to non-participants.
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeView_HiddenEvent_Participant(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	player := f.CreateUser(ctx, "Player", "player@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, player.ID, models.RoleMember)
	ev := f.CreateEventWithVisibility(ctx, org.ID, "Invitational", models.VisibilityHidden)
	f.CreateParticipant(ctx, ev.ID, player.ID)

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/events/"+ev.ID.Hex(),
		testutil.UserWithID(player.ID, player.Name, player.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	serve(h.ServeView, rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestServeView_BadID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodGet, "/events/not-a-hex-id")
	req = testutil.WithChiURLParam(req, "id", "not-a-hex-id")
	serve(h.ServeView, rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleCreate_ByOrgAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)

	form := url.Values{
		"org":        {org.ID.Hex()},
		"name":       {"Autumn Cup"},
		"visibility": {models.VisibilityPublic},
	}
	rec := testutil.NewRecorder()
	req := postForm("/events", form, testutil.UserWithID(creator.ID, creator.Name, creator.Email))
	serve(h.HandleCreate, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "events", bson.M{"organization_id": org.ID, "name": "Autumn Cup"}); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestHandleCreate_ByNonAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	member := f.CreateUser(ctx, "Member", "member@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)

	form := url.Values{
		"org":        {org.ID.Hex()},
		"name":       {"Autumn Cup"},
		"visibility": {models.VisibilityPublic},
	}
	rec := testutil.NewRecorder()
	req := postForm("/events", form, testutil.UserWithID(member.ID, member.Name, member.Email))
	serve(h.HandleCreate, rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	if n := countDocs(t, db, "events", bson.M{"organization_id": org.ID}); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestHandleApply_Member(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	player := f.CreateUser(ctx, "Player", "player@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, player.ID, models.RoleMember)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")

	rec := testutil.NewRecorder()
	req := postForm("/events/"+ev.ID.Hex()+"/apply", url.Values{},
		testutil.UserWithID(player.ID, player.Name, player.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	serve(h.HandleApply, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "event_applications", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 1 {
		t.Errorf("expected 1 application, got %d", n)
	}
	if n := countDocs(t, db, "event_participants", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 0 {
		t.Errorf("expected 0 participants, got %d", n)
	}
}

func TestHandleApply_NonMemberRefused(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	outsider := f.CreateUser(ctx, "Outsider", "outsider@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")

	rec := testutil.NewRecorder()
	req := postForm("/events/"+ev.ID.Hex()+"/apply", url.Values{},
		testutil.UserWithID(outsider.ID, outsider.Name, outsider.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	serve(h.HandleApply, rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	if n := countDocs(t, db, "event_applications", bson.M{"event_id": ev.ID}); n != 0 {
		t.Errorf("expected 0 applications, got %d", n)
	}
}

func TestHandleAccept_CreatesParticipantAndStats(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	player := f.CreateUser(ctx, "Player", "player@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, player.ID, models.RoleMember)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")
	f.CreateEventApplication(ctx, ev.ID, player.ID)

	rec := testutil.NewRecorder()
	req := postForm("/events/"+ev.ID.Hex()+"/accept/"+player.ID.Hex(), url.Values{},
		testutil.UserWithID(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", player.ID.Hex())
	serve(h.HandleAccept, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "event_participants", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 1 {
		t.Errorf("expected 1 participant, got %d", n)
	}
	if n := countDocs(t, db, "event_player_stats", bson.M{"event_id": ev.ID, "user_id": player.ID, "mmr": models.DefaultMMR}); n != 1 {
		t.Errorf("expected 1 stats row with default rating, got %d", n)
	}
	if n := countDocs(t, db, "event_applications", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 0 {
		t.Errorf("expected application to be consumed, got %d", n)
	}
}

func TestHandleAccept_ByNonAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	player := f.CreateUser(ctx, "Player", "player@test.com")
	rando := f.CreateUser(ctx, "Rando", "rando@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, player.ID, models.RoleMember)
	f.CreateMembership(ctx, org.ID, rando.ID, models.RoleMember)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")
	f.CreateEventApplication(ctx, ev.ID, player.ID)

	rec := testutil.NewRecorder()
	req := postForm("/events/"+ev.ID.Hex()+"/accept/"+player.ID.Hex(), url.Values{},
		testutil.UserWithID(rando.ID, rando.Name, rando.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", player.ID.Hex())
	serve(h.HandleAccept, rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	if n := countDocs(t, db, "event_applications", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 1 {
		t.Errorf("expected application to survive, got %d", n)
	}
}

func TestHandleBan_RemovesParticipant(t *testing.T) {
	h, db := newTestHandler(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "Creator", "creator@test.com")
	player := f.CreateUser(ctx, "Player", "player@test.com")
	rival := f.CreateUser(ctx, "Rival", "rival@test.com")
	org := f.CreateOrganization(ctx, "Summer League", creator.ID)
	f.CreateMembership(ctx, org.ID, player.ID, models.RoleMember)
	f.CreateMembership(ctx, org.ID, rival.ID, models.RoleMember)
	ev := f.CreateEvent(ctx, org.ID, "Summer Open")
	f.CreateParticipant(ctx, ev.ID, player.ID)
	f.CreateParticipant(ctx, ev.ID, rival.ID)
	m := f.CreateMatch(ctx, ev.ID, player.ID, rival.ID)

	rec := testutil.NewRecorder()
	req := postForm("/events/"+ev.ID.Hex()+"/ban/"+player.ID.Hex(), url.Values{},
		testutil.UserWithID(creator.ID, creator.Name, creator.Email))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", player.ID.Hex())
	serve(h.HandleBan, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "event_participants", bson.M{"event_id": ev.ID, "user_id": player.ID}); n != 0 {
		t.Errorf("expected participant removed, got %d", n)
	}
	if n := countDocs(t, db, "event_bans", bson.M{"event_id": ev.ID, "user_id": player.ID, "status": models.BanActive}); n != 1 {
		t.Errorf("expected 1 active ban, got %d", n)
	}
	// An event ban removes the participant but leaves their matches alone;
	// only the org-level kick/leave/ban cascades touch match status.
	if n := countDocs(t, db, "matches", bson.M{"_id": m.ID, "status": models.MatchPending}); n != 1 {
		t.Errorf("expected match left pending, got %d", n)
	}
	// Membership in the owning org is untouched by an event ban.
	if n := countDocs(t, db, "org_memberships", bson.M{"org_id": org.ID, "user_id": player.ID}); n != 1 {
		t.Errorf("expected membership to survive, got %d", n)
	}
}

func TestRoutesCompile(t *testing.T) {
	h, _ := newTestHandler(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	if r := events.Routes(h, sm); r == nil {
		t.Fatal("expected a router")
	}
}
