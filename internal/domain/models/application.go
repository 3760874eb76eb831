// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgApplication is a pending request to join an organization. It exists
// only while pending: accepting or rejecting deletes the document. A user
// can never hold an application and a membership for the same org at once.
type OrgApplication struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID `bson:"org_id" json:"org_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	AppliedAt time.Time          `bson:"applied_at" json:"applied_at"`
}

// EventApplication is a pending request to compete in an event. Same
// lifecycle as OrgApplication, scoped to one event.
type EventApplication struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	AppliedAt time.Time          `bson:"applied_at" json:"applied_at"`
}
