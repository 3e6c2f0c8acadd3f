package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/questhub/internal/app/store/users"
	"github.com/dalemusser/questhub/internal/domain/models"
	"github.com/dalemusser/questhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreate_NormalizesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		ID:       "uid-1",
		First:    "  Ada ",
		Last:     "Lovelace",
		Username: "  ADA ",
		Email:    "ADA@GSV.AC.IN",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.First != "Ada" {
		t.Errorf("First = %q", created.First)
	}
	if created.Username != "ada" {
		t.Errorf("Username = %q, want folded lowercase", created.Username)
	}
	if created.Email != "ada@gsv.ac.in" {
		t.Errorf("Email = %q", created.Email)
	}
	if created.Role != models.RoleMember {
		t.Errorf("Role = %q, want default member", created.Role)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if created.TeamID != nil {
		t.Error("new user should have no team")
	}
}

func TestGetByID_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "ghost"); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID(missing) = %v, want mongo.ErrNoDocuments", err)
	}
}

func TestSetAndClearTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "uid-1", "ada", "ada@gsv.ac.in", models.RoleMember)
	teamID := primitive.NewObjectID()

	if err := store.SetTeam(ctx, user.ID, teamID); err != nil {
		t.Fatalf("SetTeam failed: %v", err)
	}
	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != teamID {
		t.Errorf("TeamID = %v, want %v", got.TeamID, teamID)
	}

	if err := store.ClearTeam(ctx, user.ID); err != nil {
		t.Fatalf("ClearTeam failed: %v", err)
	}
	got, err = store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TeamID != nil {
		t.Errorf("TeamID = %v after ClearTeam, want nil", got.TeamID)
	}

	// Clearing an already-clear reference is fine.
	if err := store.ClearTeam(ctx, user.ID); err != nil {
		t.Errorf("second ClearTeam = %v, want nil", err)
	}
}

func TestGetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "ada", "ada@gsv.ac.in", models.RoleMember)
	fixtures.CreateUser(ctx, "uid-2", "grace", "grace@elsewhere.com", models.RoleMember)

	users, err := store.GetByIDs(ctx, []string{"uid-1", "uid-2", "uid-ghost"})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	users, err = store.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil) failed: %v", err)
	}
	if users != nil {
		t.Errorf("GetByIDs(nil) = %v, want nil", users)
	}
}
