// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. QuestHub
// warms the two live caches here so the first request never pays the load,
// and launches their change-stream watchers for the life of the process.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// The watchers outlive the startup context.
	if err := deps.Bans.Start(context.Background()); err != nil {
		return err
	}
	if err := deps.Leaderboard.Start(context.Background()); err != nil {
		return err
	}
	logger.Info("live caches warmed")
	return nil
}
