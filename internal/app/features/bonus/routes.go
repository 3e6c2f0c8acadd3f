// internal/app/features/bonus/routes.go
package bonus

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/questhub/internal/app/system/identity"
)

// Routes returns the router for player-facing bonus endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(identity.RequireUser)

	r.Get("/", h.ServeList)
	r.Post("/scan", h.ServeScan)
	r.Post("/claim", h.ServeClaim)
	r.Post("/solve", h.ServeSolve)

	return r
}

// AdminRoutes returns the router for question seeding.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(identity.RequireUser)
	r.Use(identity.RequireAdmin)

	r.Post("/", h.ServeUpsert)

	return r
}
