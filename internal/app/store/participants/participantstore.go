// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/arenahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages event participants and their per-event stats rows.
type Store struct {
	participants *mongo.Collection
	stats        *mongo.Collection
}

var ErrDuplicateParticipant = errors.New("user is already a participant of this event")

func New(db *mongo.Database) *Store {
	return &Store{
		participants: db.Collection("event_participants"),
		stats:        db.Collection("event_player_stats"),
	}
}

// Add creates a participant row. The unique (event_id, user_id) index
// rejects a second row for the same pair.
func (s *Store) Add(ctx context.Context, eventID, userID primitive.ObjectID) error {
	doc := models.EventParticipant{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.participants.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateParticipant
		}
		return err
	}
	return nil
}

// ListByUser returns every participant row for the user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EventParticipant, error) {
	cur, err := s.participants.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.EventParticipant
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsureStats lazily creates the PlayerEventStats row for (eventID, userID)
// seeded at the default MMR. Exactly-once is guaranteed by the unique
// (event_id, user_id) index: a concurrent insert loses with a duplicate-key
// error, which is swallowed. Stats rows are never deleted.
func (s *Store) EnsureStats(ctx context.Context, eventID, userID primitive.ObjectID) error {
	doc := models.PlayerEventStats{
		EventID:   eventID,
		UserID:    userID,
		MMR:       models.DefaultMMR,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.stats.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the participant row for (eventID, userID). The stats row
// stays. Returns the number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, eventID, userID primitive.ObjectID) (int64, error) {
	res, err := s.participants.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RemoveFromEvents deletes the user's participant rows across the given
// events. Membership cascades (ban, kick, leave) call this with every
// event of the organization.
func (s *Store) RemoveFromEvents(ctx context.Context, eventIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	res, err := s.participants.DeleteMany(ctx, bson.M{
		"event_id": bson.M{"$in": eventIDs},
		"user_id":  userID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists checks if a participant row exists for the given event and user.
func (s *Store) Exists(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	err := s.participants.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountMatching returns how many of the given users are currently
// participants of the event. Match creation compares this against the
// requested player count for an all-or-nothing membership check.
func (s *Store) CountMatching(ctx context.Context, eventID primitive.ObjectID, userIDs []primitive.ObjectID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	return s.participants.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"user_id":  bson.M{"$in": userIDs},
	})
}

// ListByEvent returns all participant rows for an event.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventParticipant, error) {
	cur, err := s.participants.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.EventParticipant
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStats loads the stats row for (eventID, userID).
// Returns mongo.ErrNoDocuments if the user never joined the event.
func (s *Store) GetStats(ctx context.Context, eventID, userID primitive.ObjectID) (models.PlayerEventStats, error) {
	var st models.PlayerEventStats
	if err := s.stats.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&st); err != nil {
		return models.PlayerEventStats{}, err
	}
	return st, nil
}

// ListStatsByEvent returns all stats rows for an event, highest MMR
// first with wins breaking ties.
func (s *Store) ListStatsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.PlayerEventStats, error) {
	find := options.Find().SetSort(bson.D{
		{Key: "mmr", Value: -1},
		{Key: "wins", Value: -1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.stats.Find(ctx, bson.M{"event_id": eventID}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.PlayerEventStats
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
