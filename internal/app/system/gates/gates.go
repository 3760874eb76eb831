// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages when checks fail.
//
// ArenaHub has no site-wide roles: admin, creator, and member are
// organization relationships. Route middleware (auth.RequireSignedIn)
// handles the signed-in check for whole route groups; gates cover the two
// cases left to individual handlers:
//
//  1. RequireAuth, for handlers on mixed public/signed-in routes that
//     need a user only for some code paths.
//  2. RequireOrgAdmin, for handlers whose authorization depends on the
//     specific organization being accessed (a policy lookup).
//
// Resource checks below the organization level (event participation,
// match membership) stay in the service layer, which reports
// fault-tagged errors the caller renders through uierrors.
package gates

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/arenahub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
// The loginURL parameter specifies where to redirect for login.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}

// RequireOrgAdmin ensures the user is authenticated and holds the admin
// role (or is the creator) in the given organization.
// If not authenticated, renders unauthorized error.
// If authenticated but not an org admin, renders forbidden error with the
// provided message and fallback URL.
func RequireOrgAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request, db *mongo.Database, orgID primitive.ObjectID, forbiddenMsg, fallbackURL string) Result {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}

	admin, err := orgpolicy.IsAdmin(ctx, db, orgID, uid)
	if err != nil {
		uierrors.RenderServerError(w, r, "A server error occurred.", fallbackURL)
		return Result{OK: false}
	}
	if !admin {
		uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}
