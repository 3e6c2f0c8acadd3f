package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user keyed by the given provider uid.
func (f *Fixtures) CreateUser(ctx context.Context, id, username, email, role string) models.User {
	f.t.Helper()

	user := models.User{
		ID:        id,
		First:     "Test",
		Last:      "User",
		Username:  text.Fold(username),
		Email:     text.Fold(email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateUserOnTeam creates a test user already assigned to a team.
func (f *Fixtures) CreateUserOnTeam(ctx context.Context, id, username, email string, teamID primitive.ObjectID) models.User {
	f.t.Helper()

	user := models.User{
		ID:        id,
		First:     "Test",
		Last:      "User",
		Username:  text.Fold(username),
		Email:     text.Fold(email),
		Role:      models.RoleMember,
		TeamID:    &teamID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTeam creates a verified level-1 team with the given owner as its
// only member. The name is stored folded, matching how the create flow
// writes it.
func (f *Fixtures) CreateTeam(ctx context.Context, name, code, ownerID string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:            primitive.NewObjectID(),
		Name:          text.Fold(name),
		Code:          code,
		OwnerID:       ownerID,
		Members:       []string{ownerID},
		Level:         1,
		Verified:      true,
		ActiveBonuses: []string{},
		SolvedBonuses: []string{},
		ScannedCodes:  []string{},
		CreatedAt:     now,
		LastChange:    now,
	}

	_, err := f.db.Collection("teams").InsertOne(ctx, team)
	if err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}

	return team
}

// CreateBannedTeam creates a team flagged as banned.
func (f *Fixtures) CreateBannedTeam(ctx context.Context, name, code, ownerID string) models.Team {
	f.t.Helper()

	team := f.CreateTeam(ctx, name, code, ownerID)
	_, err := f.db.Collection("teams").UpdateByID(ctx, team.ID,
		map[string]any{"$set": map[string]any{"banned": true}})
	if err != nil {
		f.t.Fatalf("failed to ban test team: %v", err)
	}
	team.Banned = true

	return team
}

// CreateTeamAtLevel creates a team sitting at the given level.
func (f *Fixtures) CreateTeamAtLevel(ctx context.Context, name, code, ownerID string, level int) models.Team {
	f.t.Helper()

	team := f.CreateTeam(ctx, name, code, ownerID)
	_, err := f.db.Collection("teams").UpdateByID(ctx, team.ID,
		map[string]any{"$set": map[string]any{"level": level}})
	if err != nil {
		f.t.Fatalf("failed to set test team level: %v", err)
	}
	team.Level = level

	return team
}

// CreateBonus creates an unclaimed bonus question.
func (f *Fixtures) CreateBonus(ctx context.Context, code, answer string, points, negative int) models.BonusQuestion {
	f.t.Helper()

	bonus := models.BonusQuestion{
		Code:           text.Fold(code),
		Title:          "Test Bonus",
		Description:    "A bonus question used in tests.",
		Question:       "What is the answer?",
		Answer:         text.Fold(answer),
		Points:         points,
		NegativePoints: negative,
		Visible:        true,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := f.db.Collection("bonusQuestions").InsertOne(ctx, bonus)
	if err != nil {
		f.t.Fatalf("failed to create test bonus: %v", err)
	}

	return bonus
}

// CreateClaimedBonus creates a bonus question already claimed by the given team.
func (f *Fixtures) CreateClaimedBonus(ctx context.Context, code, answer string, points, negative int, teamID primitive.ObjectID) models.BonusQuestion {
	f.t.Helper()

	now := time.Now().UTC()
	bonus := models.BonusQuestion{
		Code:           text.Fold(code),
		Title:          "Test Bonus",
		Description:    "A bonus question used in tests.",
		Question:       "What is the answer?",
		Answer:         text.Fold(answer),
		Points:         points,
		NegativePoints: negative,
		Claimed:        true,
		ClaimedBy:      &teamID,
		ClaimedAt:      &now,
		Visible:        true,
		CreatedAt:      now,
	}

	_, err := f.db.Collection("bonusQuestions").InsertOne(ctx, bonus)
	if err != nil {
		f.t.Fatalf("failed to create claimed test bonus: %v", err)
	}

	return bonus
}

// ReserveName inserts a reservation document directly, simulating a name
// already held by another owner.
func (f *Fixtures) ReserveName(ctx context.Context, collection, name, ownerID string) models.NameReservation {
	f.t.Helper()

	res := models.NameReservation{
		Key:       text.Fold(name),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection(collection).InsertOne(ctx, res)
	if err != nil {
		f.t.Fatalf("failed to reserve test name: %v", err)
	}

	return res
}
