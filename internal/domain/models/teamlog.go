// internal/domain/models/teamlog.go
package models

import "time"

// Audit log entry types written by the bonus state machine.
const (
	LogBonusClaim = "bonus_claim"
	LogBonusSolve = "bonus_solve"
	LogBonusFail  = "bonus_fail"
)

// LogEntry is one append-only audit record. Entries carry their own uuid so
// concurrent $push merges from different requests never collapse two
// identical-looking records into one.
type LogEntry struct {
	ID        string    `bson:"id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Type      string    `bson:"type" json:"type"`
	BonusCode string    `bson:"bonus_id" json:"bonus_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Answer    string    `bson:"answer,omitempty" json:"answer,omitempty"`
}

// TeamLog is the per-team audit document in the logs collection, keyed by the
// team id. Count is maintained with $inc alongside the $push of Entries so
// the size can be inspected without scanning the array, and so two
// simultaneous writers merge instead of clobbering each other.
type TeamLog struct {
	TeamID  string     `bson:"_id" json:"team_id"`
	Count   int64      `bson:"count" json:"count"`
	Entries []LogEntry `bson:"entries" json:"entries"`
}
