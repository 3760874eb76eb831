package matches_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/features/matches"
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/arenahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*matches.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := matches.NewHandler(db, uierrors.NewErrorLogger(logger), nil, logger)
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

// twoPlayerMatch sets up an org, an event, two enrolled players, and a
// pending match between them.
type matchFixture struct {
	Creator models.User
	Player  models.User
	Rival   models.User
	Org     models.Organization
	Event   models.Event
	Match   models.Match
}

func newTwoPlayerMatch(t *testing.T, db *mongo.Database) matchFixture {
	t.Helper()
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

	return matchFixture{Creator: creator, Player: player, Rival: rival, Org: org, Event: ev, Match: m}
}

func asUser(u models.User) testutil.TestUser {
	return testutil.UserWithID(u.ID, u.Name, u.Email)
}

func TestServeView_Public(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodGet, "/matches/"+fx.Match.ID.Hex())
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.ServeView, rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestServeView_BadID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodGet, "/matches/junk")
	req = testutil.WithChiURLParam(req, "id", "junk")
	serve(h.ServeView, rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleCreate_ByEventAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	form := url.Values{
		"event":   {fx.Event.ID.Hex()},
		"players": {fx.Player.ID.Hex(), fx.Rival.ID.Hex()},
	}
	rec := testutil.NewRecorder()
	req := postForm("/matches", form, asUser(fx.Creator))
	serve(h.HandleCreate, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "matches", bson.M{"event_id": fx.Event.ID, "status": models.MatchPending}); n != 2 {
		t.Errorf("expected 2 pending matches (fixture + created), got %d", n)
	}
}

func TestHandleCreate_ByNonAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	form := url.Values{
		"event":   {fx.Event.ID.Hex()},
		"players": {fx.Player.ID.Hex(), fx.Rival.ID.Hex()},
	}
	rec := testutil.NewRecorder()
	req := postForm("/matches", form, asUser(fx.Player))
	serve(h.HandleCreate, rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
	if n := countDocs(t, db, "matches", bson.M{"event_id": fx.Event.ID}); n != 1 {
		t.Errorf("expected only the fixture match, got %d", n)
	}
}

func TestHandleSubmitScore_FirstClaimKeepsPending(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {"3,1"}}, asUser(fx.Player))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSubmitScore, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "matches", bson.M{"_id": fx.Match.ID, "status": models.MatchPending}); n != 1 {
		t.Errorf("expected match still pending after one claim, got %d", n)
	}
	if n := countDocs(t, db, "match_submissions", bson.M{"match_id": fx.Match.ID, "user_id": fx.Player.ID, "raw_scores": "3,1"}); n != 1 {
		t.Errorf("expected 1 submission, got %d", n)
	}
}

func TestHandleSubmitScore_ConsensusCompletes(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	for _, u := range []models.User{fx.Player, fx.Rival} {
		rec := testutil.NewRecorder()
		req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {"3,1"}}, asUser(u))
		req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
		serve(h.HandleSubmitScore, rec, req)
		rec.AssertStatus(t, http.StatusSeeOther)
	}

	if n := countDocs(t, db, "matches", bson.M{"_id": fx.Match.ID, "status": models.MatchCompleted}); n != 1 {
		t.Errorf("expected match completed after unanimous claims, got %d", n)
	}
	if n := countDocs(t, db, "match_players", bson.M{"match_id": fx.Match.ID, "user_id": fx.Player.ID, "final_score": 3}); n != 1 {
		t.Errorf("expected position-1 final score of 3, got %d", n)
	}
	if n := countDocs(t, db, "match_players", bson.M{"match_id": fx.Match.ID, "user_id": fx.Rival.ID, "final_score": 1}); n != 1 {
		t.Errorf("expected position-2 final score of 1, got %d", n)
	}
}

func TestHandleSubmitScore_DisagreementStaysPending(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	claims := map[string]string{fx.Player.Email: "3,1", fx.Rival.Email: "1,3"}
	for _, u := range []models.User{fx.Player, fx.Rival} {
		rec := testutil.NewRecorder()
		req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {claims[u.Email]}}, asUser(u))
		req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
		serve(h.HandleSubmitScore, rec, req)
		rec.AssertStatus(t, http.StatusSeeOther)
	}

	if n := countDocs(t, db, "matches", bson.M{"_id": fx.Match.ID, "status": models.MatchPending}); n != 1 {
		t.Errorf("expected match pending after conflicting claims, got %d", n)
	}
	// Both claims stay live for the next re-check.
	if n := countDocs(t, db, "match_submissions", bson.M{"match_id": fx.Match.ID}); n != 2 {
		t.Errorf("expected both submissions retained, got %d", n)
	}
}

func TestHandleSubmitScore_NonPlayerRefused(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {"3,1"}}, asUser(fx.Creator))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSubmitScore, rec, req)

	// Admins run matches; they do not play in this one.
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleSubmitScore_MalformedScores(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {"three,one"}}, asUser(fx.Player))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSubmitScore, rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleFinalize_AdminOverride(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	// One claim only; no consensus yet.
	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/score", url.Values{"scores": {"2,4"}}, asUser(fx.Player))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSubmitScore, rec, req)
	rec.AssertStatus(t, http.StatusSeeOther)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	var sub models.MatchSubmission
	if err := db.Collection("match_submissions").FindOne(ctx, bson.M{"match_id": fx.Match.ID}).Decode(&sub); err != nil {
		t.Fatalf("load submission: %v", err)
	}

	rec = testutil.NewRecorder()
	req = postForm("/matches/"+fx.Match.ID.Hex()+"/finalize",
		url.Values{"submission": {sub.ID.Hex()}}, asUser(fx.Creator))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleFinalize, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "matches", bson.M{"_id": fx.Match.ID, "status": models.MatchCompleted}); n != 1 {
		t.Errorf("expected match completed by override, got %d", n)
	}
	if n := countDocs(t, db, "match_players", bson.M{"match_id": fx.Match.ID, "user_id": fx.Rival.ID, "final_score": 4}); n != 1 {
		t.Errorf("expected rival final score of 4, got %d", n)
	}
}

func TestHandleFinalize_ByNonAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/finalize",
		url.Values{"submission": {fx.Match.ID.Hex()}}, asUser(fx.Player))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleFinalize, rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleSetStatus_ReopensCompleted(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := db.Collection("matches").UpdateByID(ctx, fx.Match.ID,
		bson.M{"$set": bson.M{"status": models.MatchCompleted}}); err != nil {
		t.Fatalf("seed completed status: %v", err)
	}

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/status",
		url.Values{"status": {models.MatchPending}}, asUser(fx.Creator))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSetStatus, rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if n := countDocs(t, db, "matches", bson.M{"_id": fx.Match.ID, "status": models.MatchPending}); n != 1 {
		t.Errorf("expected match reopened, got %d", n)
	}
}

func TestHandleSetStatus_UnknownStatus(t *testing.T) {
	h, db := newTestHandler(t)
	fx := newTwoPlayerMatch(t, db)

	rec := testutil.NewRecorder()
	req := postForm("/matches/"+fx.Match.ID.Hex()+"/status",
		url.Values{"status": {"abandoned"}}, asUser(fx.Creator))
	req = testutil.WithChiURLParam(req, "id", fx.Match.ID.Hex())
	serve(h.HandleSetStatus, rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRoutesCompile(t *testing.T) {
	h, _ := newTestHandler(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	if r := matches.Routes(h, sm); r == nil {
		t.Fatal("expected a router")
	}
}
