package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/questhub/internal/app/system/apierr"
	"github.com/dalemusser/questhub/internal/app/system/timeouts"
	"github.com/dalemusser/questhub/internal/domain/models"
)

// SessionCookie is the cookie the auth frontend stores the signed token in.
const SessionCookie = "__session"

// Identity is what the gate resolves for a request and injects into
// r.Context(). It is immutable for the life of the request: handlers read
// the snapshot taken at the gate, never re-resolve.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool

	// UserExists is true when the token's subject has a user document.
	// A signed-in caller without one can only hit /register.
	UserExists bool
	Role       string
	TeamID     *primitive.ObjectID

	// Banned is true when the caller's team is in the banned set.
	Banned bool
}

// SignedIn reports whether the request carried a valid token.
func (id *Identity) SignedIn() bool {
	return id != nil && id.UserID != ""
}

// IsAdmin reports whether the resolved user has the admin role.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == models.RoleAdmin
}

type ctxKey string

const identityKey ctxKey = "identity"

// FromRequest returns the resolved identity and a "found?" flag.
func FromRequest(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok
}

func withIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// WithTestIdentity injects an identity directly, bypassing token
// verification. For handler tests only.
func WithTestIdentity(r *http.Request, id *Identity) *http.Request {
	return withIdentity(r, id)
}

// UserLookup is the slice of the user store the gate needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// BanChecker is the slice of the banned-set cache the gate needs.
type BanChecker interface {
	IsBanned(id primitive.ObjectID) bool
}

// Gate verifies the request's session token and resolves the caller's
// identity. Verification failures never reject the request here: the gate
// degrades to anonymous and lets each handler decide what it requires.
type Gate struct {
	key    []byte
	issuer string
	users  UserLookup
	bans   BanChecker
	log    *zap.Logger
}

func NewGate(key, issuer string, users UserLookup, bans BanChecker, logger *zap.Logger) *Gate {
	return &Gate{
		key:    []byte(key),
		issuer: issuer,
		users:  users,
		bans:   bans,
		log:    logger,
	}
}

type sessionClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Middleware resolves the caller's identity once per request and stores it
// in context. Anonymous requests pass through without an identity.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := g.resolve(r.Context(), raw)
		if err != nil {
			g.log.Debug("session token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withIdentity(r, id))
	})
}

func (g *Gate) resolve(ctx context.Context, raw string) (*Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return g.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}

	id := &Identity{
		UserID:        claims.Subject,
		Email:         strings.ToLower(claims.Email),
		EmailVerified: claims.EmailVerified,
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	user, err := g.users.GetByID(lookupCtx, claims.Subject)
	switch {
	case err == mongo.ErrNoDocuments:
		// Signed in but not registered yet.
		return id, nil
	case err != nil:
		return nil, err
	}

	id.UserExists = true
	id.Role = user.Role
	id.TeamID = user.TeamID
	if user.TeamID != nil && g.bans != nil {
		id.Banned = g.bans.IsBanned(*user.TeamID)
	}

	return id, nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// RequireUser rejects requests without a registered, unbanned identity.
// Handlers behind it can assume FromRequest succeeds and UserExists is true.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromRequest(r)
		if !ok || !id.SignedIn() {
			apierr.Write(w, nil, apierr.New(apierr.Unauthenticated, "sign in required"))
			return
		}
		if !id.UserExists {
			apierr.Write(w, nil, apierr.New(apierr.Unauthenticated, "account not registered"))
			return
		}
		if id.Banned {
			apierr.Write(w, nil, apierr.New(apierr.Unauthorized, "team is banned"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity lacks the admin role.
// Must run inside RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromRequest(r)
		if !ok || !id.IsAdmin() {
			apierr.Write(w, nil, apierr.New(apierr.Unauthorized, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
