// internal/app/store/matches/matchstore.go
package matchstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/arenahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages matches, their player rows, and score submissions.
type Store struct {
	matches     *mongo.Collection
	players     *mongo.Collection
	submissions *mongo.Collection
}

var ErrDuplicatePlayer = errors.New("duplicate player in match")

func New(db *mongo.Database) *Store {
	return &Store{
		matches:     db.Collection("matches"),
		players:     db.Collection("match_players"),
		submissions: db.Collection("match_submissions"),
	}
}

// EncodeScores produces the canonical score payload stored on submissions.
// The consensus check compares these strings byte-for-byte, so every
// submission path must encode through here.
func EncodeScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, sc := range scores {
		parts[i] = strconv.Itoa(sc)
	}
	return strings.Join(parts, ",")
}

// Create inserts a match and one player row per ID, position = index+1 in
// caller order. Run inside txn.Run so the match and its players commit
// together.
func (s *Store) Create(ctx context.Context, eventID primitive.ObjectID, playerIDs []primitive.ObjectID) (models.Match, error) {
	now := time.Now().UTC()
	m := models.Match{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Status:    models.MatchPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.matches.InsertOne(ctx, m); err != nil {
		return models.Match{}, err
	}

	docs := make([]interface{}, 0, len(playerIDs))
	for i, uid := range playerIDs {
		docs = append(docs, models.MatchPlayer{
			MatchID:  m.ID,
			UserID:   uid,
			Position: i + 1,
		})
	}
	if _, err := s.players.InsertMany(ctx, docs); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Match{}, ErrDuplicatePlayer
		}
		return models.Match{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Match, error) {
	var m models.Match
	if err := s.matches.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Match{}, err
	}
	return m, nil
}

// Players returns the match's player rows ordered by position.
func (s *Store) Players(ctx context.Context, matchID primitive.ObjectID) ([]models.MatchPlayer, error) {
	cur, err := s.players.Find(ctx, bson.M{"match_id": matchID},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.MatchPlayer
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// IsPlayer checks whether the user holds a player row in the match.
func (s *Store) IsPlayer(ctx context.Context, matchID, userID primitive.ObjectID) (bool, error) {
	err := s.players.FindOne(ctx, bson.M{"match_id": matchID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountPlayers returns the number of players in the match.
func (s *Store) CountPlayers(ctx context.Context, matchID primitive.ObjectID) (int64, error) {
	return s.players.CountDocuments(ctx, bson.M{"match_id": matchID})
}

// SetStatus updates the match status. Completing stamps completed_at;
// moving away from completed clears it.
func (s *Store) SetStatus(ctx context.Context, matchID primitive.ObjectID, matchStatus string) error {
	now := time.Now().UTC()
	set := bson.M{"status": matchStatus, "updated_at": now}
	update := bson.M{"$set": set}
	if matchStatus == models.MatchCompleted {
		set["completed_at"] = now
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}
	_, err := s.matches.UpdateByID(ctx, matchID, update)
	return err
}

// SetFinalScore records a player's final score.
func (s *Store) SetFinalScore(ctx context.Context, matchID, userID primitive.ObjectID, score int) error {
	_, err := s.players.UpdateOne(ctx,
		bson.M{"match_id": matchID, "user_id": userID},
		bson.M{"$set": bson.M{"final_score": score}})
	return err
}

// ReplaceSubmission deletes any prior submission by this user for the
// match, then inserts the new claim. The delete-then-insert guarantees at
// most one live submission per (match, user) so "the last N submissions"
// means "every player's current claim".
func (s *Store) ReplaceSubmission(ctx context.Context, matchID, userID primitive.ObjectID, scores []int) (models.MatchSubmission, error) {
	if _, err := s.submissions.DeleteMany(ctx, bson.M{"match_id": matchID, "user_id": userID}); err != nil {
		return models.MatchSubmission{}, err
	}
	sub := models.MatchSubmission{
		ID:          primitive.NewObjectID(),
		MatchID:     matchID,
		UserID:      userID,
		Scores:      scores,
		RawScores:   EncodeScores(scores),
		SubmittedAt: time.Now().UTC(),
	}
	if _, err := s.submissions.InsertOne(ctx, sub); err != nil {
		return models.MatchSubmission{}, err
	}
	return sub, nil
}

// RecentSubmissions returns up to limit submissions for the match, most
// recent first.
func (s *Store) RecentSubmissions(ctx context.Context, matchID primitive.ObjectID, limit int64) ([]models.MatchSubmission, error) {
	cur, err := s.submissions.Find(ctx, bson.M{"match_id": matchID},
		options.Find().
			SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var subs []models.MatchSubmission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// GetSubmission loads a submission by its ID.
func (s *Store) GetSubmission(ctx context.Context, id primitive.ObjectID) (models.MatchSubmission, error) {
	var sub models.MatchSubmission
	if err := s.submissions.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return models.MatchSubmission{}, err
	}
	return sub, nil
}

// ListByEvent returns all matches for an event, newest first.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Match, error) {
	cur, err := s.matches.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.Match
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingByUser returns the user's pending matches, newest first.
func (s *Store) ListPendingByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Match, error) {
	cur, err := s.players.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"match_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var matchIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			MatchID primitive.ObjectID `bson:"match_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		matchIDs = append(matchIDs, row.MatchID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(matchIDs) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	mcur, err := s.matches.Find(ctx, bson.M{
		"_id":    bson.M{"$in": matchIDs},
		"status": models.MatchPending,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer mcur.Close(ctx)
	var rows []models.Match
	if err := mcur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ForfeitPending marks the user's pending matches within the given events
// as forfeit. Completed matches are immune: results stand even when the
// player is later kicked or banned. Returns the number of matches updated.
func (s *Store) ForfeitPending(ctx context.Context, eventIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}

	cur, err := s.players.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"match_id": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var matchIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			MatchID primitive.ObjectID `bson:"match_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		matchIDs = append(matchIDs, row.MatchID)
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}
	if len(matchIDs) == 0 {
		return 0, nil
	}

	res, err := s.matches.UpdateMany(ctx,
		bson.M{
			"_id":      bson.M{"$in": matchIDs},
			"event_id": bson.M{"$in": eventIDs},
			"status":   models.MatchPending,
		},
		bson.M{"$set": bson.M{
			"status":     models.MatchForfeit,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
