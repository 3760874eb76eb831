// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a platform account. Organization and event roles are not
// embedded here; they live in the org_memberships, event_participants,
// and ban collections and are resolved through the policy packages.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	AuthMethod string             `bson:"auth_method" json:"auth_method"` // "password" | "google"

	// PasswordHash is empty for externally-issued identities (Google SSO).
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	Verified bool   `bson:"verified" json:"verified"`
	Status   string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
