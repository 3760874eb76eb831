// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization visibility levels.
//
//   - hidden:  invisible to non-members; reported as not-found to outsiders
//   - private: listed, but membership is by application only
//   - public:  listed and viewable, membership by application
//   - open:    applying joins immediately (auto-accept)
const (
	VisibilityHidden  = "hidden"
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
	VisibilityOpen    = "open"
)

// Organization is the top-level group owning events and a membership roster.
//
// CreatorID is permanent: the creator always holds the admin role and can
// never be kicked, banned, demoted, or allowed to leave.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description" json:"description"`
	Visibility  string             `bson:"visibility" json:"visibility"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidVisibility reports whether v is one of the recognized visibility levels.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityHidden, VisibilityPrivate, VisibilityPublic, VisibilityOpen:
		return true
	}
	return false
}
