// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all organization routes under the base path (typically
// "/organizations" from bootstrap). The directory and organization pages
// are public; visibility filtering happens in the handlers so hidden
// organizations never leak. Everything that changes state requires a
// signed-in user, with org-level authorization enforced by the
// membership service.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public pages.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	// Signed-in pages and actions.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)

		// Self-service membership.
		pr.Post("/{id}/apply", h.HandleApply)
		pr.Post("/{id}/leave", h.HandleLeave)

		// Admin roster actions. The target user rides in the path so a
		// stale form cannot act on the wrong account.
		pr.Post("/{id}/accept/{userID}", h.HandleAccept)
		pr.Post("/{id}/reject/{userID}", h.HandleReject)
		pr.Post("/{id}/promote/{userID}", h.HandlePromote)
		pr.Post("/{id}/demote/{userID}", h.HandleDemote)
		pr.Post("/{id}/kick/{userID}", h.HandleKick)
		pr.Post("/{id}/ban/{userID}", h.HandleBan)
		pr.Post("/{id}/unban/{userID}", h.HandleUnban)
	})

	return r
}
