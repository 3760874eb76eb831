// internal/domain/models/ban.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ban statuses. A ban document is never deleted; unbanning flips the
// status to inactive and re-banning flips it back (upsert-on-conflict).
const (
	BanActive   = "active"
	BanInactive = "inactive"
)

// OrgBan bars a user from an organization. One document per (org_id, user_id).
type OrgBan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID `bson:"org_id" json:"org_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// EventBan bars a user from a single event. Org-level bans fan out into one
// of these per event; an org-level unban does not clear them (bans are
// reviewed per scope).
type EventBan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
