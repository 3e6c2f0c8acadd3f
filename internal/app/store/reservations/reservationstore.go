// internal/app/store/reservations/reservationstore.go

// Package reservstore implements the create-if-absent uniqueness primitive.
// A reservation document's existence IS the lock: it is keyed by the folded
// resource name, so inserting it claims the name and deleting it releases
// the name. One Store serves one namespace (collection).
package reservstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reservation namespaces. Team names are released when the team disbands;
// usernames are permanent.
const (
	TeamNames = "teamNames"
	Usernames = "usernames"
)

// ErrTaken is returned when the key is already reserved.
var ErrTaken = errors.New("name is already taken")

type Store struct {
	c *mongo.Collection
}

// New creates a Store over the given reservation namespace.
func New(db *mongo.Database, namespace string) *Store {
	return &Store{c: db.Collection(namespace)}
}

// Probe reports whether key is currently reserved. This is the advisory
// pre-check for fast user feedback: it can race under contention and must
// never be the basis for a write. Reserve re-checks authoritatively.
func (s *Store) Probe(ctx context.Context, key string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": key}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Reserve claims key for ownerID. Call it with a transaction context
// (txn.Run) so the existence re-check reads through the transaction's own
// handle — that read, not any earlier Probe, is the authoritative decision.
// Returns ErrTaken if the key is held by anyone.
func (s *Store) Reserve(ctx context.Context, key, ownerID string) error {
	err := s.c.FindOne(ctx, bson.M{"_id": key}).Err()
	switch err {
	case mongo.ErrNoDocuments:
		// free; fall through to insert
	case nil:
		return ErrTaken
	default:
		return err
	}

	_, err = s.c.InsertOne(ctx, models.NameReservation{
		Key:       key,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// The unique _id index backstops the re-check for writers outside
		// any transaction.
		if wafflemongo.IsDup(err) {
			return ErrTaken
		}
		return err
	}
	return nil
}

// Release frees key. Releasing a key that is not reserved is a no-op.
func (s *Store) Release(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Get loads a reservation, primarily for tests and admin inspection.
func (s *Store) Get(ctx context.Context, key string) (models.NameReservation, error) {
	var res models.NameReservation
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&res); err != nil {
		return models.NameReservation{}, err
	}
	return res, nil
}
