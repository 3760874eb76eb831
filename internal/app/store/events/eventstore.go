// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/arenahub/internal/app/system/status"
	"github.com/dalemusser/arenahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEvent = errors.New("an event with this name already exists in the organization")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.NameCI = text.Fold(ev.Name)
	if ev.Visibility == "" {
		ev.Visibility = models.VisibilityPublic
	}
	if ev.Status == "" {
		ev.Status = status.Active
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateEvent
		}
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var ev models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// ListByOrg returns all events owned by an organization.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// IDsByOrg returns just the event IDs for an organization. Cascades (ban,
// kick, leave) use this to fan out without decoding full documents.
func (s *Store) IDsByOrg(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// GetByIDs loads multiple events by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.Event
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update modifies an event's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ev models.Event) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if ev.Name != "" {
		set["name"] = ev.Name
		set["name_ci"] = text.Fold(ev.Name)
	}
	if ev.Description != "" {
		set["description"] = ev.Description
	}
	if ev.Visibility != "" {
		set["visibility"] = ev.Visibility
	}
	if ev.Status != "" {
		set["status"] = ev.Status
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEvent
		}
		return err
	}
	return nil
}
