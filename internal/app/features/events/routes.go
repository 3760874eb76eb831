// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all event routes under the base path (typically "/events"
// from bootstrap). The event page is public with visibility filtering in
// the handler; enrollment actions require a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Post("/{id}/apply", h.HandleApply)
		pr.Post("/{id}/accept/{userID}", h.HandleAccept)
		pr.Post("/{id}/reject/{userID}", h.HandleReject)
		pr.Post("/{id}/ban/{userID}", h.HandleBan)
		pr.Post("/{id}/unban/{userID}", h.HandleUnban)
	})

	return r
}
