// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. "exception" is a non-admin role that is still exempt from the
// team-leave lockout window.
const (
	RoleMember    = "member"
	RoleAdmin     = "admin"
	RoleException = "exception"
)

// User represents a registered player.
//
// NOTE:
//   - The document ID is the identity provider's uid, not an ObjectID. It is
//     externally issued and immutable.
//   - Email is captured from the verified identity token at registration so
//     that team verification can be recomputed without calling back out to
//     the identity provider.
type User struct {
	ID        string              `bson:"_id" json:"id"`
	First     string              `bson:"first" json:"first"`
	Last      string              `bson:"last" json:"last"`
	Username  string              `bson:"username" json:"username"` // lowercase, unique via usernames reservation
	Email     string              `bson:"email" json:"email"`
	Role      string              `bson:"role" json:"role"` // member | admin | exception
	TeamID    *primitive.ObjectID `bson:"team,omitempty" json:"team,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
