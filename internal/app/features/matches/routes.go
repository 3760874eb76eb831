// internal/app/features/matches/routes.go
package matches

import (
	"github.com/dalemusser/arenahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all match routes under the base path (typically
// "/matches" from bootstrap). The match page is public with visibility
// filtering in the handler; everything that mutates requires a signed-in
// user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Post("/{id}/score", h.HandleSubmitScore)
		pr.Post("/{id}/finalize", h.HandleFinalize)
		pr.Post("/{id}/status", h.HandleSetStatus)
	})

	return r
}
