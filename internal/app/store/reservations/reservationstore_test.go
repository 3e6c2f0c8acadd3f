package reservstore_test

import (
	"testing"

	reservstore "github.com/dalemusser/questhub/internal/app/store/reservations"
	"github.com/dalemusser/questhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestReserve_ThenProbe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservstore.New(db, reservstore.TeamNames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	taken, err := store.Probe(ctx, "cipher crew")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if taken {
		t.Fatal("key should start free")
	}

	if err := store.Reserve(ctx, "cipher crew", "team-1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	taken, err = store.Probe(ctx, "cipher crew")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !taken {
		t.Error("key should be taken after Reserve")
	}

	res, err := store.Get(ctx, "cipher crew")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.OwnerID != "team-1" {
		t.Errorf("OwnerID = %q, want team-1", res.OwnerID)
	}
	if res.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestReserve_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservstore.New(db, reservstore.TeamNames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Reserve(ctx, "cipher crew", "team-1"); err != nil {
		t.Fatalf("first Reserve failed: %v", err)
	}
	if err := store.Reserve(ctx, "cipher crew", "team-2"); err != reservstore.ErrTaken {
		t.Errorf("second Reserve = %v, want ErrTaken", err)
	}

	// Owner unchanged.
	res, err := store.Get(ctx, "cipher crew")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.OwnerID != "team-1" {
		t.Errorf("OwnerID = %q, want team-1", res.OwnerID)
	}
}

func TestRelease_FreesKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservstore.New(db, reservstore.TeamNames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Reserve(ctx, "cipher crew", "team-1"); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := store.Release(ctx, "cipher crew"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// Released name is reservable again, by a different owner.
	if err := store.Reserve(ctx, "cipher crew", "team-2"); err != nil {
		t.Errorf("Reserve after Release failed: %v", err)
	}
}

func TestRelease_MissingKeyIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservstore.New(db, reservstore.Usernames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Release(ctx, "never-reserved"); err != nil {
		t.Errorf("Release of missing key = %v, want nil", err)
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	teamNames := reservstore.New(db, reservstore.TeamNames)
	usernames := reservstore.New(db, reservstore.Usernames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := teamNames.Reserve(ctx, "cipher", "team-1"); err != nil {
		t.Fatalf("team name Reserve failed: %v", err)
	}
	// Same key in the other namespace is still free.
	if err := usernames.Reserve(ctx, "cipher", "user-1"); err != nil {
		t.Errorf("username Reserve failed: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservstore.New(db, reservstore.TeamNames)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "ghost"); err != mongo.ErrNoDocuments {
		t.Errorf("Get(missing) = %v, want mongo.ErrNoDocuments", err)
	}
}
