// internal/app/features/teams/routes.go
package teams

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/questhub/internal/app/system/identity"
)

// Routes returns the router for team lifecycle endpoints. All of them need
// a registered, unbanned caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(identity.RequireUser)

	r.Post("/create", h.ServeCreate)
	r.Post("/join", h.ServeJoin)
	r.Post("/leave", h.ServeLeave)

	return r
}
