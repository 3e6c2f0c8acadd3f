// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/questhub/internal/app/system/apierr"
)

// Handler serves the public leaderboard.
type Handler struct {
	Cache *Cache
	Log   *zap.Logger
}

func NewHandler(cache *Cache, logger *zap.Logger) *Handler {
	return &Handler{Cache: cache, Log: logger}
}

type response struct {
	Teams []Row `json:"teams"`
}

// ServeLeaderboard handles GET /leaderboard. Served straight from the cache
// snapshot; no database access on the request path.
func (h *Handler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, response{Teams: h.Cache.Rows()})
}
