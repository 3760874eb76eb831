// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles stored on the org_memberships document.
//
// The creator is not a third stored role: it is derived from
// Organization.CreatorID and always resolves above admin. Keeping the
// stored role scalar avoids the creator ⊆ admin ⊆ member consistency
// burden falling on every call site.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrgMembership is the authoritative join between users and organizations.
// Exactly one document per (org_id, user_id); role is a scalar.
type OrgMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID `bson:"org_id" json:"org_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"` // "admin" | "member"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
