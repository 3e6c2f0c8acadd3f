// internal/app/features/register/routes.go
package register

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for registration. No RequireUser here: the
// whole point is that the caller has no user record yet. The handler does
// its own sign-in check.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeRegister)

	return r
}
