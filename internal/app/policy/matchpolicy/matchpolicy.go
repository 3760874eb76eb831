// internal/app/policy/matchpolicy.go
package matchpolicy

import (
	"context"

	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsPlayer reports whether the user holds a player slot in the match
// according to the authoritative match_players collection.
func IsPlayer(ctx context.Context, db *mongo.Database, matchID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("match_players").CountDocuments(ctx, bson.M{
		"match_id": matchID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanSubmitScore reports whether the user may submit a score claim for the
// match: players only, and only while the match is pending.
func CanSubmitScore(ctx context.Context, db *mongo.Database, match models.Match, userID primitive.ObjectID) (bool, error) {
	if match.Status != models.MatchPending {
		return false, nil
	}
	return IsPlayer(ctx, db, match.ID, userID)
}

// CanManage reports whether the user can set the match's status or scores
// directly, which requires administering the owning event.
func CanManage(ctx context.Context, db *mongo.Database, event models.Event, userID primitive.ObjectID) (bool, error) {
	return eventpolicy.IsAdmin(ctx, db, event, userID)
}
