// internal/app/store/bonuses/bonusstore.go
package bonusstore

import (
	"context"
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bonusQuestions")}
}

// GetByCode loads the bonus document for a scanned code. The code is the
// document key, so inside a transaction this read locks the claim decision.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.BonusQuestion, error) {
	var q models.BonusQuestion
	if err := s.c.FindOne(ctx, bson.M{"_id": code}).Decode(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// MarkClaimed stamps the claim. Ownership checks happen in the transaction
// body before this write; the stamp itself is unconditional.
func (s *Store) MarkClaimed(ctx context.Context, code string, teamID primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, code, bson.M{"$set": bson.M{
		"claimed":    true,
		"claimed_by": teamID,
		"claimed_at": at,
		"solved":     false,
	}})
	return err
}

// MarkSolved stamps the solve and hides the question from future listings.
func (s *Store) MarkSolved(ctx context.Context, code string, teamID primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, code, bson.M{"$set": bson.M{
		"solved":    true,
		"solved_by": teamID,
		"solved_at": at,
		"visible":   false,
	}})
	return err
}

// Upsert writes a question document under its code, preserving any claim or
// solve state already present. Admin seeding only.
func (s *Store) Upsert(ctx context.Context, q models.BonusQuestion) error {
	set := bson.M{
		"title":           q.Title,
		"description":     q.Description,
		"points":          q.Points,
		"negative_points": q.NegativePoints,
		"hint":            q.Hint,
		"question":        q.Question,
		"answer":          q.Answer,
		"visible":         q.Visible,
	}
	_, err := s.c.UpdateByID(ctx, q.Code,
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"claimed":    false,
				"solved":     false,
				"created_at": time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true))
	return err
}

// ListForTeam returns every question the team may see: visible ones plus the
// team's own claims (a claim stays listed for its owner even after the
// question is hidden). Answers are stripped.
func (s *Store) ListForTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.BonusQuestion, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"visible": true},
		bson.M{"claimed_by": teamID},
	}}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.BonusQuestion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Answer = ""
	}
	return out, nil
}
