// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a tournament instance inside an organization, with its own
// participant roster and matches. Visibility is independent of the owning
// organization's visibility.
type Event struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"name_ci"`
	Description    string             `bson:"description" json:"description"`
	Visibility     string             `bson:"visibility" json:"visibility"`

	// LowestScoreWins flips the scoring direction (golf-style events).
	LowestScoreWins bool `bson:"lowest_score_wins" json:"lowest_score_wins"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
