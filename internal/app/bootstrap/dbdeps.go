// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/questhub/internal/app/features/leaderboard"
	"github.com/dalemusser/questhub/internal/app/system/bans"
)

// DBDeps holds database/back-end dependencies for the app, plus the two
// process-wide caches built over them. The caches are constructed in
// ConnectDB and started in Startup so BuildHandler receives them warm.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Bans        *bans.Cache
	Leaderboard *leaderboard.Cache
}
