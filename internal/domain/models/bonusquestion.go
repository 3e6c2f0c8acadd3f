// internal/domain/models/bonusquestion.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BonusQuestion is a time-limited side challenge unlocked by scanning a QR
// code. The document is keyed by the code itself so a claim is a single
// transactional read-modify-write on one document.
//
// Lifecycle: unclaimed -> claimed(by one team) -> solved(by that team) or
// still claimed after wrong answers. Exactly one team ever holds the claim,
// and exactly one team ever solves it.
type BonusQuestion struct {
	Code        string `bson:"_id" json:"code"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Points      int    `bson:"points" json:"points"`
	// Penalty applied on a wrong answer. Stored as configured by the admin;
	// consumers must take the absolute value so a negative configuration
	// cannot flip into an award.
	NegativePoints int    `bson:"negative_points" json:"negative_points"`
	Hint           string `bson:"hint" json:"hint"`
	Question       string `bson:"question" json:"question"`
	Answer         string `bson:"answer" json:"-"` // never exposed to clients

	Claimed   bool                `bson:"claimed" json:"claimed"`
	ClaimedBy *primitive.ObjectID `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time          `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`

	Solved   bool                `bson:"solved" json:"solved"`
	SolvedBy *primitive.ObjectID `bson:"solved_by,omitempty" json:"solved_by,omitempty"`
	SolvedAt *time.Time          `bson:"solved_at,omitempty" json:"solved_at,omitempty"`

	Visible   bool      `bson:"visible" json:"visible"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
