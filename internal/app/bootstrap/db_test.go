// internal/app/bootstrap/db_test.go
package bootstrap

import (
	"testing"

	"go.uber.org/zap"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/questhub/internal/testutil"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	fix := testutil.NewFixtures(t, db)
	fix.CreateTeam(ctx, "Alpha Squad", "alphacode", "u1")

	// The unique index on code must reject a second team with the same
	// invite code even when the name differs.
	_, err := db.Collection("teams").InsertOne(ctx, map[string]any{
		"name": "beta squad",
		"code": "alphacode",
	})
	if !wafflemongo.IsDup(err) {
		t.Fatalf("expected duplicate key error for reused invite code, got %v", err)
	}
}
