// internal/app/store/logs/logstore.go

// Package logstore maintains the per-team audit log. Appends use
// accumulate-and-merge: one update carries a $inc on the running count and a
// $push of the entry, both associative merge operators, so two simultaneous
// appends from different requests both land — there is no read-modify-write
// to lose.
package logstore

import (
	"context"
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("logs")}
}

// Append adds one audit entry to the team's log, creating the log document
// on first use. The entry id is assigned here.
func (s *Store) Append(ctx context.Context, teamID primitive.ObjectID, entry models.LogEntry) error {
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := s.c.UpdateByID(ctx, teamID.Hex(),
		bson.M{
			"$inc":  bson.M{"count": 1},
			"$push": bson.M{"entries": entry},
		},
		options.Update().SetUpsert(true))
	return err
}

// Get loads a team's full log. Returns mongo.ErrNoDocuments when the team
// has never logged anything.
func (s *Store) Get(ctx context.Context, teamID primitive.ObjectID) (*models.TeamLog, error) {
	var l models.TeamLog
	if err := s.c.FindOne(ctx, bson.M{"_id": teamID.Hex()}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Count returns the team's entry count without loading the entries array.
func (s *Store) Count(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	var doc struct {
		Count int64 `bson:"count"`
	}
	err := s.c.FindOne(ctx, bson.M{"_id": teamID.Hex()},
		options.FindOne().SetProjection(bson.M{"count": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Count, nil
}
