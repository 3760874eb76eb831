// internal/app/policy/orgpolicy.go
//
// Package orgpolicy resolves what a user can see and do within an
// organization. Roles are organization-scoped: the same user can be an
// admin in one organization and banned from another. The creator role is
// derived from the organization document's creator_id, never stored in
// the memberships collection.
package orgpolicy

import (
	"context"

	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Role is a user's resolved standing within an organization.
type Role string

const (
	RoleCreator   Role = "creator"
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
	RoleApplicant Role = "applicant"
	RoleBanned    Role = "banned"
	RoleNone      Role = "none"
)

// RoleOf resolves the user's standing in the organization. An active ban
// shadows any membership the user may still hold, so it is checked first.
func RoleOf(ctx context.Context, db *mongo.Database, org models.Organization, userID primitive.ObjectID) (Role, error) {
	if org.CreatorID == userID {
		return RoleCreator, nil
	}

	banned, err := IsBanned(ctx, db, org.ID, userID)
	if err != nil {
		return RoleNone, err
	}
	if banned {
		return RoleBanned, nil
	}

	var m struct {
		Role string `bson:"role"`
	}
	err = db.Collection("org_memberships").FindOne(ctx, bson.M{
		"org_id":  org.ID,
		"user_id": userID,
	}).Decode(&m)
	switch {
	case err == nil:
		if m.Role == models.RoleAdmin {
			return RoleAdmin, nil
		}
		return RoleMember, nil
	case err != mongo.ErrNoDocuments:
		return RoleNone, err
	}

	n, err := db.Collection("org_applications").CountDocuments(ctx, bson.M{
		"org_id":  org.ID,
		"user_id": userID,
	})
	if err != nil {
		return RoleNone, err
	}
	if n > 0 {
		return RoleApplicant, nil
	}
	return RoleNone, nil
}

// IsMember reports whether the user holds a membership in the organization
// (any role). The creator always counts as a member.
func IsMember(ctx context.Context, db *mongo.Database, orgID, userID primitive.ObjectID) (bool, error) {
	creator, err := isCreator(ctx, db, orgID, userID)
	if err != nil || creator {
		return creator, err
	}
	n, err := db.Collection("org_memberships").CountDocuments(ctx, bson.M{
		"org_id":  orgID,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsAdmin reports whether the user can administer the organization. The
// creator always can, ban or no membership row notwithstanding.
func IsAdmin(ctx context.Context, db *mongo.Database, orgID, userID primitive.ObjectID) (bool, error) {
	creator, err := isCreator(ctx, db, orgID, userID)
	if err != nil || creator {
		return creator, err
	}
	n, err := db.Collection("org_memberships").CountDocuments(ctx, bson.M{
		"org_id":  orgID,
		"user_id": userID,
		"role":    models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsCreator reports whether the user created the organization.
func IsCreator(ctx context.Context, db *mongo.Database, orgID, userID primitive.ObjectID) (bool, error) {
	return isCreator(ctx, db, orgID, userID)
}

func isCreator(ctx context.Context, db *mongo.Database, orgID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("organizations").CountDocuments(ctx, bson.M{
		"_id":        orgID,
		"creator_id": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsBanned reports whether the user holds an active ban from the organization.
func IsBanned(ctx context.Context, db *mongo.Database, orgID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("org_bans").CountDocuments(ctx, bson.M{
		"org_id":  orgID,
		"user_id": userID,
		"status":  models.BanActive,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanView reports whether the user may see that the organization exists.
// Hidden organizations are visible to members only; callers should render
// a denial as not-found so hidden organizations do not leak. Private,
// public, and open organizations are all discoverable.
func CanView(ctx context.Context, db *mongo.Database, org models.Organization, userID primitive.ObjectID) (bool, error) {
	if org.Visibility != models.VisibilityHidden {
		return true, nil
	}
	return IsMember(ctx, db, org.ID, userID)
}

// CanApply reports whether the user may apply to join. Banned users and
// existing members cannot; neither can anyone when the organization is
// hidden to them.
func CanApply(ctx context.Context, db *mongo.Database, org models.Organization, userID primitive.ObjectID) (bool, error) {
	role, err := RoleOf(ctx, db, org, userID)
	if err != nil {
		return false, err
	}
	return role == RoleNone, nil
}
