// internal/domain/models/participant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventParticipant is the authoritative join between users and events.
// Exactly one document per (event_id, user_id). Distinct from org
// membership: membership cascades (kick, ban, leave) delete these rows.
type EventParticipant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// DefaultMMR seeds PlayerEventStats when a user first joins an event.
const DefaultMMR = 1500

// PlayerEventStats holds per-event player statistics. Created lazily,
// exactly once, when a user first becomes a participant; never deleted,
// even when the participant row is removed by a cascade. Ratings are
// stored fields updated externally, not computed here.
type PlayerEventStats struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	MMR           int                `bson:"mmr" json:"mmr"`
	MatchesPlayed int                `bson:"matches_played" json:"matches_played"`
	Wins          int                `bson:"wins" json:"wins"`
	Losses        int                `bson:"losses" json:"losses"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
