// internal/app/system/orgutil/orgs.go
package orgutil

import (
	"context"
	"errors"

	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrBadID means the supplied hex string is not a valid ObjectID.
	ErrBadID = errors.New("invalid organization id")

	// ErrOrgNotFound means no organization document matched.
	ErrOrgNotFound = errors.New("organization not found")
)

// ResolveOrgFromHex parses a hex ID and loads the organization. Handlers
// use it for ?org= query parameters and {id} path segments.
func ResolveOrgFromHex(ctx context.Context, db *mongo.Database, hex string) (models.Organization, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return models.Organization{}, ErrBadID
	}
	var org models.Organization
	err = db.Collection("organizations").FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, ErrOrgNotFound
	}
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetOrgName returns the organization's display name, or "" when the ID
// is zero or the organization no longer exists.
func GetOrgName(ctx context.Context, db *mongo.Database, id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	var row struct {
		Name string `bson:"name"`
	}
	if err := db.Collection("organizations").FindOne(ctx, bson.M{"_id": id}).Decode(&row); err != nil {
		return ""
	}
	return row.Name
}

// IsExpectedOrgError reports whether err is a lookup failure the caller
// should render as a 4xx rather than a server error.
func IsExpectedOrgError(err error) bool {
	return errors.Is(err, ErrBadID) || errors.Is(err, ErrOrgNotFound)
}
