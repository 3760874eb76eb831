// internal/app/policy/eventpolicy.go
//
// Package eventpolicy resolves event-scoped access. Events inherit their
// administration from the owning organization: there are no event-level
// admins, only org admins acting on the event.
package eventpolicy

import (
	"context"

	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsAdmin reports whether the user can administer the event, which means
// administering its organization.
func IsAdmin(ctx context.Context, db *mongo.Database, event models.Event, userID primitive.ObjectID) (bool, error) {
	return orgpolicy.IsAdmin(ctx, db, event.OrganizationID, userID)
}

// IsParticipant reports whether the user is enrolled in the event.
func IsParticipant(ctx context.Context, db *mongo.Database, eventID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("event_participants").CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsBanned reports whether the user is barred from the event. An active
// organization ban bars the user from every event the organization runs,
// so it is checked alongside the event-level ban.
func IsBanned(ctx context.Context, db *mongo.Database, event models.Event, userID primitive.ObjectID) (bool, error) {
	orgBanned, err := orgpolicy.IsBanned(ctx, db, event.OrganizationID, userID)
	if err != nil || orgBanned {
		return orgBanned, err
	}
	n, err := db.Collection("event_bans").CountDocuments(ctx, bson.M{
		"event_id": event.ID,
		"user_id":  userID,
		"status":   models.BanActive,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanView reports whether the user may see that the event exists. The
// organization's visibility gates first: a hidden organization hides its
// events from non-members regardless of the event's own setting. Hidden
// events are then visible only to participants and org admins. Callers
// should render a denial as not-found.
func CanView(ctx context.Context, db *mongo.Database, org models.Organization, event models.Event, userID primitive.ObjectID) (bool, error) {
	orgVisible, err := orgpolicy.CanView(ctx, db, org, userID)
	if err != nil || !orgVisible {
		return false, err
	}
	if event.Visibility != models.VisibilityHidden {
		return true, nil
	}
	participant, err := IsParticipant(ctx, db, event.ID, userID)
	if err != nil || participant {
		return participant, err
	}
	return IsAdmin(ctx, db, event, userID)
}

// CanApply reports whether the user may apply to the event: an org member
// in good standing who is not banned from the event, not already enrolled,
// and without a pending application.
func CanApply(ctx context.Context, db *mongo.Database, org models.Organization, event models.Event, userID primitive.ObjectID) (bool, error) {
	member, err := orgpolicy.IsMember(ctx, db, org.ID, userID)
	if err != nil || !member {
		return false, err
	}
	banned, err := IsBanned(ctx, db, event, userID)
	if err != nil || banned {
		return false, err
	}
	enrolled, err := IsParticipant(ctx, db, event.ID, userID)
	if err != nil || enrolled {
		return false, err
	}
	n, err := db.Collection("event_applications").CountDocuments(ctx, bson.M{
		"event_id": event.ID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
