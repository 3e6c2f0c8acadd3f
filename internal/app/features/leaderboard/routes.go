// internal/app/features/leaderboard/routes.go
package leaderboard

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the leaderboard endpoint. The leaderboard
// is public: no identity required.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeLeaderboard)

	return r
}
