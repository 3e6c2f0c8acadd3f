// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/questhub/internal/app/system/normalize"
	"github.com/dalemusser/questhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by identity-provider uid.
// Returns mongo.ErrNoDocuments if no record exists.
func (s *Store) GetByID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads several users at once. Used by the leave transaction to
// recompute team verification from the remaining members; missing ids are
// simply absent from the result.
func (s *Store) GetByIDs(ctx context.Context, uids []string) ([]models.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": uids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new user record keyed by the provider uid. Uniqueness of
// the username is owned by the usernames reservation, written in the same
// transaction by the caller; this method performs no reservation itself.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.First = normalize.DisplayName(u.First)
	u.Last = normalize.DisplayName(u.Last)
	u.Username = normalize.Key(u.Username)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	u.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetTeam points the user's team reference at teamID.
func (s *Store) SetTeam(ctx context.Context, uid string, teamID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"team": teamID}})
	return err
}

// ClearTeam removes the user's team reference. Unconditional: it succeeds
// whether or not a reference was set.
func (s *Store) ClearTeam(ctx context.Context, uid string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$unset": bson.M{"team": ""}})
	return err
}
