// internal/app/store/memberships/membershipstore.go
package membershipstore

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

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateMembership = errors.New("user is already a member of this organization")
	ErrAlreadyAdmin        = errors.New("user is already an admin of this organization")
	ErrNotAdmin            = errors.New("user is not an admin of this organization")
	ErrNoMembership        = errors.New("user is not a member of this organization")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_memberships")}
}

// Add creates a membership with the given role. The unique (org_id, user_id)
// index rejects a second membership for the same pair.
func (s *Store) Add(ctx context.Context, orgID, userID primitive.ObjectID, role string) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return errors.New(`role must be "admin" or "member"`)
	}
	doc := models.OrgMembership{
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Promote grants the admin role. If no membership exists one is created
// directly as admin; promoting an existing admin is a conflict
// (ErrAlreadyAdmin), one consistent policy everywhere.
func (s *Store) Promote(ctx context.Context, orgID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID, "role": models.RoleMember},
		bson.M{"$set": bson.M{"role": models.RoleAdmin}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// No member-role doc matched: either no membership at all (create one
	// as admin) or the user already holds admin.
	err = s.Add(ctx, orgID, userID, models.RoleAdmin)
	if err == ErrDuplicateMembership {
		return ErrAlreadyAdmin
	}
	return err
}

// Demote drops an admin back to member. Fails with ErrNotAdmin when the
// user holds no admin role; the membership itself persists.
func (s *Store) Demote(ctx context.Context, orgID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID, "role": models.RoleAdmin},
		bson.M{"$set": bson.M{"role": models.RoleMember}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotAdmin
	}
	return nil
}

// Remove deletes the membership document for (orgID, userID).
// Returns the number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, orgID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GetRole returns the stored role for (orgID, userID), or ErrNoMembership.
// Callers wanting the full derived role (creator, applicant, banned) should
// go through orgpolicy.RoleOf instead.
func (s *Store) GetRole(ctx context.Context, orgID, userID primitive.ObjectID) (string, error) {
	var m models.OrgMembership
	err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return "", ErrNoMembership
	}
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// Exists checks if any membership exists for the given org and user.
func (s *Store) Exists(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasRole checks for a membership with the exact stored role.
func (s *Store) HasRole(ctx context.Context, orgID, userID primitive.ObjectID, role string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID, "role": role}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByOrg returns all memberships for an organization, optionally
// filtered by role. If role is empty, returns all memberships.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID, role string) ([]models.OrgMembership, error) {
	filter := bson.M{"org_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns all of a user's memberships across organizations.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrgMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByOrg returns the count of memberships for an organization,
// optionally filtered by role.
func (s *Store) CountByOrg(ctx context.Context, orgID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"org_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}
