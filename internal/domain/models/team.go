// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTeamSize is the hard membership cap. Joins past this limit are rejected
// inside the join transaction, never by the advisory pre-read alone.
const MaxTeamSize = 3

// Team is the unit of play.
//
// Invariants (enforced by the transactional lifecycle operations):
//   - Name is unique, lowercase, and backed by a teamNames reservation.
//   - Code is a unique short invite code; it is queried, not the document key.
//   - Owner is always one of Members; a team whose last member leaves is
//     deleted rather than left empty.
//   - Verified is true only while every member's email passes the
//     organizational-domain check.
type Team struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"` // already folded lowercase
	Code     string             `bson:"code" json:"code"`
	OwnerID  string             `bson:"owner" json:"owner"`
	Members  []string           `bson:"members" json:"members"` // user ids, join order
	Level    int                `bson:"level" json:"level"`
	Score    int                `bson:"bonus_score" json:"bonus_score"`
	Verified bool               `bson:"verified" json:"verified"`
	Banned   bool               `bson:"banned" json:"banned"`

	// Bonus bookkeeping. ActiveBonuses holds claimed-but-unsolved codes,
	// SolvedBonuses the solved ones, ScannedCodes every code the team has
	// ever scanned (claimed or not).
	ActiveBonuses []string `bson:"active_bonuses,omitempty" json:"active_bonuses,omitempty"`
	SolvedBonuses []string `bson:"solved_bonuses,omitempty" json:"solved_bonuses,omitempty"`
	ScannedCodes  []string `bson:"scanned_codes,omitempty" json:"scanned_codes,omitempty"`

	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	LastChange time.Time `bson:"last_change" json:"last_change"`
}

// HasMember reports whether uid is currently on the team.
func (t Team) HasMember(uid string) bool {
	for _, m := range t.Members {
		if m == uid {
			return true
		}
	}
	return false
}
