// internal/app/store/bans/banstore.go
package banstore

import (
	"context"
	"time"

	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages org-scoped and event-scoped bans. Ban documents are never
// deleted: banning upserts status=active, unbanning flips status=inactive,
// so a user can be unbanned and re-banned any number of times while the
// (scope, user) uniqueness invariant holds.
type Store struct {
	orgBans   *mongo.Collection
	eventBans *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		orgBans:   db.Collection("org_bans"),
		eventBans: db.Collection("event_bans"),
	}
}

// SetOrgBan upserts the org-level ban for (orgID, userID) to the given status.
func (s *Store) SetOrgBan(ctx context.Context, orgID, userID primitive.ObjectID, status string) error {
	now := time.Now().UTC()
	_, err := s.orgBans.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID},
		bson.M{
			"$set":         bson.M{"status": status, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}

// SetEventBan upserts the event-level ban for (eventID, userID).
func (s *Store) SetEventBan(ctx context.Context, eventID, userID primitive.ObjectID, status string) error {
	now := time.Now().UTC()
	_, err := s.eventBans.UpdateOne(ctx,
		bson.M{"event_id": eventID, "user_id": userID},
		bson.M{
			"$set":         bson.M{"status": status, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}

// IsOrgBanned reports whether an active org-level ban exists.
func (s *Store) IsOrgBanned(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	return s.activeBanExists(ctx, s.orgBans, bson.M{"org_id": orgID, "user_id": userID})
}

// IsEventBanned reports whether an active event-level ban exists. This does
// not consult the org-level ban; precedence between the two scopes belongs
// to eventpolicy.
func (s *Store) IsEventBanned(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	return s.activeBanExists(ctx, s.eventBans, bson.M{"event_id": eventID, "user_id": userID})
}

func (s *Store) activeBanExists(ctx context.Context, c *mongo.Collection, filter bson.M) (bool, error) {
	filter["status"] = models.BanActive
	err := c.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListOrgBans returns all ban documents for an organization, optionally
// filtered by status.
func (s *Store) ListOrgBans(ctx context.Context, orgID primitive.ObjectID, status string) ([]models.OrgBan, error) {
	filter := bson.M{"org_id": orgID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.orgBans.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var bans []models.OrgBan
	if err := cur.All(ctx, &bans); err != nil {
		return nil, err
	}
	return bans, nil
}

// ListEventBans returns all ban documents for an event, optionally filtered
// by status.
func (s *Store) ListEventBans(ctx context.Context, eventID primitive.ObjectID, status string) ([]models.EventBan, error) {
	filter := bson.M{"event_id": eventID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.eventBans.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var bans []models.EventBan
	if err := cur.All(ctx, &bans); err != nil {
		return nil, err
	}
	return bans, nil
}
