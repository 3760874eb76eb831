// internal/app/service/matches/service.go
//
// Package matches implements the match lifecycle: creation by an event
// admin, per-player score submission, the consensus check that finalizes
// a match once every player's current claim agrees, and the
// administrative overrides that bypass consensus.
package matches

import (
	"context"

	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"

	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/app/policy/matchpolicy"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/system/txn"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service coordinates match creation, score submission, and finalization.
type Service struct {
	db           *mongo.Database
	log          *zap.Logger
	orgs         *organizationstore.Store
	events       *eventstore.Store
	participants *participantstore.Store
	matches      *matchstore.Store
}

// New creates a matches Service bound to the database.
func New(db *mongo.Database, log *zap.Logger) *Service {
	return &Service{
		db:           db,
		log:          log,
		orgs:         organizationstore.New(db),
		events:       eventstore.New(db),
		participants: participantstore.New(db),
		matches:      matchstore.New(db),
	}
}

// Create inserts a pending match with one player row per ID, position
// following caller order. Every player must currently be enrolled in the
// event; the check is a single count comparison so enrollment is
// all-or-nothing. Requires at least two players and an event admin actor.
func (s *Service) Create(ctx context.Context, eventID primitive.ObjectID, playerIDs []primitive.ObjectID, actorID primitive.ObjectID) (models.Match, error) {
	if len(playerIDs) < 2 {
		return models.Match{}, fault.Invalid("a match needs at least two players")
	}
	seen := make(map[primitive.ObjectID]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			return models.Match{}, fault.Invalid("duplicate player in match")
		}
		seen[id] = struct{}{}
	}

	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return models.Match{}, err
	}
	if err := s.requireEventAdmin(ctx, ev, actorID); err != nil {
		return models.Match{}, err
	}

	n, err := s.participants.CountMatching(ctx, eventID, playerIDs)
	if err != nil {
		return models.Match{}, err
	}
	if n != int64(len(playerIDs)) {
		return models.Match{}, fault.Invalid("all players must be participants of the event")
	}

	var created models.Match
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var err error
		created, err = s.matches.Create(ctx, eventID, playerIDs)
		return err
	})
	if err != nil {
		return models.Match{}, err
	}
	return created, nil
}

// SubmitScore records the player's claim for the match outcome, replacing
// any earlier claim by the same player, then runs the consensus check.
// Returns the match as it stands after the check, so callers can observe
// a completion triggered by this submission.
func (s *Service) SubmitScore(ctx context.Context, matchID, userID primitive.ObjectID, scores []int) (models.Match, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	ok, err := matchpolicy.CanSubmitScore(ctx, s.db, m, userID)
	if err != nil {
		return models.Match{}, err
	}
	if !ok {
		if m.Status != models.MatchPending {
			return models.Match{}, fault.Conflict("match is no longer pending")
		}
		return models.Match{}, fault.NotAuthorized("user is not a player in this match")
	}
	if len(scores) == 0 {
		return models.Match{}, fault.Invalid("scores must not be empty")
	}
	players, err := s.matches.Players(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if len(scores) != len(players) {
		return models.Match{}, fault.Invalid("got %d scores for a %d-player match", len(scores), len(players))
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.matches.ReplaceSubmission(ctx, matchID, userID, scores); err != nil {
			return err
		}
		return s.checkConsensus(ctx, matchID)
	})
	if err != nil {
		return models.Match{}, err
	}
	return s.matches.GetByID(ctx, matchID)
}

// checkConsensus fetches the most recent N submissions for the match,
// N being the player count. Each player has at most one live submission,
// so N recent submissions means every player has claimed. If all N carry
// byte-identical score payloads the match completes and each player's
// final score is taken from the agreed array by position; otherwise the
// match stays pending and every submission is retained for the next
// re-check.
func (s *Service) checkConsensus(ctx context.Context, matchID primitive.ObjectID) error {
	players, err := s.matches.Players(ctx, matchID)
	if err != nil {
		return err
	}
	subs, err := s.matches.RecentSubmissions(ctx, matchID, int64(len(players)))
	if err != nil {
		return err
	}
	if len(subs) < len(players) {
		return nil
	}
	agreed := subs[0]
	for _, sub := range subs[1:] {
		if sub.RawScores != agreed.RawScores {
			return nil
		}
	}
	return s.applyScores(ctx, matchID, players, agreed.Scores)
}

// FinalizeWithSubmission is the administrative override: the chosen
// submission's scores are applied by position and the match completes,
// no unanimity required. The submission need not belong to a current
// player. Requires an event admin actor.
func (s *Service) FinalizeWithSubmission(ctx context.Context, matchID, submissionID, actorID primitive.ObjectID) (models.Match, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	ev, err := s.loadEvent(ctx, m.EventID)
	if err != nil {
		return models.Match{}, err
	}
	if err := s.requireEventAdmin(ctx, ev, actorID); err != nil {
		return models.Match{}, err
	}

	sub, err := s.matches.GetSubmission(ctx, submissionID)
	if err == mongo.ErrNoDocuments {
		return models.Match{}, fault.NotFound("submission not found")
	}
	if err != nil {
		return models.Match{}, err
	}
	if sub.MatchID != matchID {
		return models.Match{}, fault.Invalid("submission does not belong to this match")
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		players, err := s.matches.Players(ctx, matchID)
		if err != nil {
			return err
		}
		return s.applyScores(ctx, matchID, players, sub.Scores)
	})
	if err != nil {
		return models.Match{}, err
	}
	return s.matches.GetByID(ctx, matchID)
}

// SetStatus is the direct administrative override of the match status.
// It can move a match to any valid status, including reopening one, and
// is the only path that leaves completed or forfeit.
func (s *Service) SetStatus(ctx context.Context, matchID primitive.ObjectID, matchStatus string, actorID primitive.ObjectID) error {
	if !models.ValidMatchStatus(matchStatus) {
		return fault.Invalid("unknown match status %q", matchStatus)
	}
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	ev, err := s.loadEvent(ctx, m.EventID)
	if err != nil {
		return err
	}
	if err := s.requireEventAdmin(ctx, ev, actorID); err != nil {
		return err
	}
	return s.matches.SetStatus(ctx, matchID, matchStatus)
}

// ViewMatch loads the match for the given viewer, gated by the owning
// event's visibility. A denial surfaces as not-found.
func (s *Service) ViewMatch(ctx context.Context, matchID, viewerID primitive.ObjectID) (models.Match, []models.MatchPlayer, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, nil, err
	}
	ev, err := s.loadEvent(ctx, m.EventID)
	if err != nil {
		return models.Match{}, nil, err
	}
	org, err := s.orgs.GetByID(ctx, ev.OrganizationID)
	if err != nil {
		return models.Match{}, nil, err
	}
	visible, err := eventpolicy.CanView(ctx, s.db, org, ev, viewerID)
	if err != nil {
		return models.Match{}, nil, err
	}
	if !visible {
		return models.Match{}, nil, fault.NotFound("match not found")
	}
	players, err := s.matches.Players(ctx, matchID)
	if err != nil {
		return models.Match{}, nil, err
	}
	return m, players, nil
}

// applyScores writes each player's final score from the array by position
// order and completes the match.
func (s *Service) applyScores(ctx context.Context, matchID primitive.ObjectID, players []models.MatchPlayer, scores []int) error {
	if len(scores) != len(players) {
		return fault.Invalid("got %d scores for a %d-player match", len(scores), len(players))
	}
	for i, p := range players {
		if err := s.matches.SetFinalScore(ctx, matchID, p.UserID, scores[i]); err != nil {
			return err
		}
	}
	return s.matches.SetStatus(ctx, matchID, models.MatchCompleted)
}

func (s *Service) loadMatch(ctx context.Context, matchID primitive.ObjectID) (models.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err == mongo.ErrNoDocuments {
		return models.Match{}, fault.NotFound("match not found")
	}
	return m, err
}

func (s *Service) loadEvent(ctx context.Context, eventID primitive.ObjectID) (models.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, fault.NotFound("event not found")
	}
	return ev, err
}

func (s *Service) requireEventAdmin(ctx context.Context, ev models.Event, actorID primitive.ObjectID) error {
	ok, err := eventpolicy.IsAdmin(ctx, s.db, ev, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.NotAuthorized("actor is not an event admin")
	}
	return nil
}
