// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false — so callers can trust that ok=true means a valid,
// authenticated user with a valid ObjectID.
//
// There are no site-wide roles here: admin/creator/member are organization
// relationships resolved through the policy packages, never cached in the
// session.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// SignedIn reports whether a valid user is present on the request.
func SignedIn(r *http.Request) bool {
	_, _, ok := UserCtx(r)
	return ok
}
