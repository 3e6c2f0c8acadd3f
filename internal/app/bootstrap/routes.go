// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	bonusfeature "github.com/dalemusser/questhub/internal/app/features/bonus"
	healthfeature "github.com/dalemusser/questhub/internal/app/features/health"
	leaderboardfeature "github.com/dalemusser/questhub/internal/app/features/leaderboard"
	registerfeature "github.com/dalemusser/questhub/internal/app/features/register"
	teamsfeature "github.com/dalemusser/questhub/internal/app/features/teams"
	bonusstore "github.com/dalemusser/questhub/internal/app/store/bonuses"
	logstore "github.com/dalemusser/questhub/internal/app/store/logs"
	reservstore "github.com/dalemusser/questhub/internal/app/store/reservations"
	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
	userstore "github.com/dalemusser/questhub/internal/app/store/users"
	"github.com/dalemusser/questhub/internal/app/system/identity"
	"github.com/dalemusser/questhub/internal/app/system/lockwindow"
	"github.com/dalemusser/questhub/internal/app/system/notify"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the caches in deps are already warm.
// Every request passes the identity gate once; the feature routers decide
// what level of identity they require.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	teams := teamstore.New(db)
	bonuses := bonusstore.New(db)
	logs := logstore.New(db)
	teamNames := reservstore.New(db, reservstore.TeamNames)
	usernames := reservstore.New(db, reservstore.Usernames)
	notifier := notify.New(appCfg.WebhookURL, logger)

	gate := identity.NewGate(appCfg.SessionTokenKey, appCfg.SessionTokenIssuer, users, deps.Bans, logger)

	r := chi.NewRouter()

	// Global identity middleware: resolves the caller once per request.
	r.Use(gate.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration (signed in, but no user record yet)
	registerHandler := registerfeature.NewHandler(db, users, usernames, notifier, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Team lifecycle
	teamsHandler := teamsfeature.NewHandler(db, users, teams, teamNames, notifier, logger,
		appCfg.VerifiedEmailDomain, appCfg.InviteCodeLength,
		lockwindow.Window{CutoffAt: appCfg.TeamLeaveCutoff})
	r.Mount("/team", teamsfeature.Routes(teamsHandler))

	// Bonus questions
	bonusHandler := bonusfeature.NewHandler(db, bonuses, teams, logs, logger)
	r.Mount("/bonus", bonusfeature.Routes(bonusHandler))
	r.Mount("/admin/bonus", bonusfeature.AdminRoutes(bonusHandler))

	// Public leaderboard, served from the cache
	leaderboardHandler := leaderboardfeature.NewHandler(deps.Leaderboard, logger)
	r.Mount("/leaderboard", leaderboardfeature.Routes(leaderboardHandler))

	return r, nil
}
