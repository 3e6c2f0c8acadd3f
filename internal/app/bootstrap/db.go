// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/questhub/internal/app/features/leaderboard"
	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
	"github.com/dalemusser/questhub/internal/app/system/bans"
)

// ConnectDB establishes the MongoDB connection and assembles DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	teams := teamstore.New(db)
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Bans:          bans.New(teams, logger),
		Leaderboard:   leaderboard.NewCache(teams, logger),
	}, nil
}

// EnsureSchema creates the indexes the lifecycle operations rely on. The
// reservation collections get uniqueness from their _id for free; team
// invite codes and names need explicit unique indexes as the backstop
// behind the in-transaction checks.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	teams := deps.MongoDatabase.Collection("teams")

	_, err := teams.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_code"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name"),
		},
		{
			Keys:    bson.D{{Key: "banned", Value: 1}},
			Options: options.Index().SetName("banned"),
		},
	})
	if err != nil {
		return fmt.Errorf("creating team indexes: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
