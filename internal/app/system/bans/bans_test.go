package bans_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
	"github.com/dalemusser/questhub/internal/app/system/bans"
	"github.com/dalemusser/questhub/internal/testutil"
	"go.uber.org/zap"
)

func TestRefreshAndIsBanned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clean := fixtures.CreateTeam(ctx, "clean team", "aaaa1111", "uid-1")
	banned := fixtures.CreateBannedTeam(ctx, "cheaters", "bbbb2222", "uid-2")

	cache := bans.New(teamstore.New(db), zap.NewNop())
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if cache.IsBanned(clean.ID) {
		t.Error("clean team reported banned")
	}
	if !cache.IsBanned(banned.ID) {
		t.Error("banned team reported clean")
	}
	if cache.IsBanned(primitive.NewObjectID()) {
		t.Error("unknown id reported banned")
	}
}

func TestRefreshSwapsWholeSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateBannedTeam(ctx, "cheaters", "aaaa1111", "uid-1")

	cache := bans.New(teamstore.New(db), zap.NewNop())
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !cache.IsBanned(team.ID) {
		t.Fatal("banned team not in set")
	}

	// Unban and refresh: the stale entry must disappear, not linger.
	if _, err := db.Collection("teams").UpdateByID(ctx, team.ID,
		bson.M{"$set": bson.M{"banned": false}}); err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if cache.IsBanned(team.ID) {
		t.Error("unbanned team still in set")
	}
}

func TestEmptyBeforeStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cache := bans.New(teamstore.New(db), zap.NewNop())

	// Before any refresh the set is empty, never nil.
	if cache.IsBanned(primitive.NewObjectID()) {
		t.Error("fresh cache reported a ban")
	}
}
