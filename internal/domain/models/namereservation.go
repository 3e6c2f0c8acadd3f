// internal/domain/models/namereservation.go
package models

import "time"

// NameReservation enforces global uniqueness of a normalized name. The
// document's existence is the lock: it is keyed by the folded name and
// created in the same transaction as the entity that owns it. There is no
// separate "taken" flag.
//
// Two namespaces use it: teamNames (released when the team disbands) and
// usernames (never released).
type NameReservation struct {
	Key       string    `bson:"_id" json:"key"` // folded resource name
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
