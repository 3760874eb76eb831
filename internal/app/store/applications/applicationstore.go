// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/arenahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages pending join applications for organizations and events.
// Applications exist only while pending: accepting or rejecting deletes
// them, so presence of a document means "awaiting a decision".
type Store struct {
	orgApps   *mongo.Collection
	eventApps *mongo.Collection
}

var ErrDuplicateApplication = errors.New("user already has a pending application")

func New(db *mongo.Database) *Store {
	return &Store{
		orgApps:   db.Collection("org_applications"),
		eventApps: db.Collection("event_applications"),
	}
}

// CreateOrg files an application to join an organization.
func (s *Store) CreateOrg(ctx context.Context, orgID, userID primitive.ObjectID) error {
	doc := models.OrgApplication{
		OrgID:     orgID,
		UserID:    userID,
		AppliedAt: time.Now().UTC(),
	}
	if _, err := s.orgApps.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateApplication
		}
		return err
	}
	return nil
}

// DeleteOrg removes a pending org application. Returns the number of
// documents deleted (0 or 1).
func (s *Store) DeleteOrg(ctx context.Context, orgID, userID primitive.ObjectID) (int64, error) {
	res, err := s.orgApps.DeleteOne(ctx, bson.M{"org_id": orgID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ExistsOrg checks for a pending org application.
func (s *Store) ExistsOrg(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	return exists(ctx, s.orgApps, bson.M{"org_id": orgID, "user_id": userID})
}

// ListOrg returns pending applications for an organization, oldest first.
func (s *Store) ListOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.OrgApplication, error) {
	cur, err := s.orgApps.Find(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var apps []models.OrgApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateEvent files an application to compete in an event.
func (s *Store) CreateEvent(ctx context.Context, eventID, userID primitive.ObjectID) error {
	doc := models.EventApplication{
		EventID:   eventID,
		UserID:    userID,
		AppliedAt: time.Now().UTC(),
	}
	if _, err := s.eventApps.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateApplication
		}
		return err
	}
	return nil
}

// DeleteEvent removes a pending event application. Returns the number of
// documents deleted (0 or 1).
func (s *Store) DeleteEvent(ctx context.Context, eventID, userID primitive.ObjectID) (int64, error) {
	res, err := s.eventApps.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ExistsEvent checks for a pending event application.
func (s *Store) ExistsEvent(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	return exists(ctx, s.eventApps, bson.M{"event_id": eventID, "user_id": userID})
}

// ListEvent returns pending applications for an event, oldest first.
func (s *Store) ListEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventApplication, error) {
	cur, err := s.eventApps.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var apps []models.EventApplication
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func exists(ctx context.Context, c *mongo.Collection, filter bson.M) (bool, error) {
	err := c.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
