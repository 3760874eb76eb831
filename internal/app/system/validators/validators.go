// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/arenahub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("users", usersSchema())
	ensure("organizations", organizationsSchema())
	ensure("events", eventsSchema())

	// Membership state machine collections
	ensure("org_memberships", orgMembershipsSchema())
	ensure("org_applications", applicationSchema("org_id"))
	ensure("org_bans", banSchema("org_id"))
	ensure("event_participants", eventParticipantsSchema())
	ensure("event_applications", applicationSchema("event_id"))
	ensure("event_bans", banSchema("event_id"))
	ensure("event_player_stats", playerStatsSchema())

	// Match collections
	ensure("matches", matchesSchema())
	ensure("match_players", matchPlayersSchema())
	ensure("match_submissions", matchSubmissionsSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("audit_events", nil)
	ensure("login_records", nil)
	ensure("oauth_states", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func visibilityEnum() bson.A {
	return bson.A{
		models.VisibilityHidden,
		models.VisibilityPrivate,
		models.VisibilityPublic,
		models.VisibilityOpen,
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "status", "auth_method"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":       bson.M{"bsonType": "string", "minLength": 1},
				"email_ci":    bson.M{"bsonType": "string", "minLength": 1},
				"status":      bson.M{"enum": bson.A{"active", "disabled", "archived"}},
				"auth_method": bson.M{"enum": bson.A{models.AuthMethodPassword, models.AuthMethodGoogle}},
			},
		},
	}
}

func organizationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "visibility", "creator_id", "status"},
			"properties": bson.M{
				"name":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":    bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"visibility": bson.M{"enum": visibilityEnum()},
				"creator_id": bson.M{"bsonType": "objectId"},
				"status":     bson.M{"enum": bson.A{"active", "disabled", "archived"}},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"organization_id", "name", "name_ci", "visibility", "status"},
			"properties": bson.M{
				"organization_id":   bson.M{"bsonType": "objectId"},
				"name":              bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":           bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"visibility":        bson.M{"enum": visibilityEnum()},
				"lowest_score_wins": bson.M{"bsonType": "bool"},
				"status":            bson.M{"enum": bson.A{"active", "disabled", "archived"}},
			},
		},
	}
}

func orgMembershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"org_id", "user_id", "role"},
			"properties": bson.M{
				"org_id":     bson.M{"bsonType": "objectId"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"role":       bson.M{"enum": bson.A{models.RoleAdmin, models.RoleMember}},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

// applicationSchema covers org_applications and event_applications, which
// differ only in the name of the scope field.
func applicationSchema(scopeField string) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{scopeField, "user_id", "applied_at"},
			"properties": bson.M{
				scopeField:   bson.M{"bsonType": "objectId"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"applied_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

// banSchema covers org_bans and event_bans, which differ only in the name
// of the scope field.
func banSchema(scopeField string) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{scopeField, "user_id", "status"},
			"properties": bson.M{
				scopeField: bson.M{"bsonType": "objectId"},
				"user_id":  bson.M{"bsonType": "objectId"},
				"status":   bson.M{"enum": bson.A{models.BanActive, models.BanInactive}},
			},
		},
	}
}

func eventParticipantsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "user_id"},
			"properties": bson.M{
				"event_id":   bson.M{"bsonType": "objectId"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func playerStatsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "user_id", "mmr"},
			"properties": bson.M{
				"event_id":       bson.M{"bsonType": "objectId"},
				"user_id":        bson.M{"bsonType": "objectId"},
				"mmr":            bson.M{"bsonType": bson.A{"int", "long"}},
				"matches_played": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"wins":           bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"losses":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func matchesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "status"},
			"properties": bson.M{
				"event_id": bson.M{"bsonType": "objectId"},
				"status":   bson.M{"enum": bson.A{models.MatchPending, models.MatchCompleted, models.MatchForfeit}},
			},
		},
	}
}

func matchPlayersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"match_id", "user_id", "position"},
			"properties": bson.M{
				"match_id": bson.M{"bsonType": "objectId"},
				"user_id":  bson.M{"bsonType": "objectId"},
				"position": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			},
		},
	}
}

func matchSubmissionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"match_id", "user_id", "scores", "raw_scores"},
			"properties": bson.M{
				"match_id":     bson.M{"bsonType": "objectId"},
				"user_id":      bson.M{"bsonType": "objectId"},
				"scores":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": bson.A{"int", "long"}}},
				"raw_scores":   bson.M{"bsonType": "string", "minLength": 1},
				"submitted_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
