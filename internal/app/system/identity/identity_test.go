package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/questhub/internal/domain/models"
)

const (
	testKey    = "0123456789abcdef0123456789abcdef"
	testIssuer = "questhub-test"
)

type stubUsers struct {
	users map[string]models.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

type stubBans struct {
	banned map[primitive.ObjectID]bool
}

func (s *stubBans) IsBanned(id primitive.ObjectID) bool {
	return s.banned[id]
}

func signToken(t *testing.T, key, issuer, subject, email string, verified bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":            issuer,
		"sub":            subject,
		"email":          email,
		"email_verified": verified,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newGate(users *stubUsers, bans *stubBans) *Gate {
	return NewGate(testKey, testIssuer, users, bans, zap.NewNop())
}

func serveWithGate(g *Gate, r *http.Request) (*Identity, bool) {
	var got *Identity
	var ok bool
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromRequest(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
	return got, ok
}

func TestMiddlewareResolvesRegisteredUser(t *testing.T) {
	teamID := primitive.NewObjectID()
	users := &stubUsers{users: map[string]models.User{
		"uid-1": {ID: "uid-1", Role: models.RoleMember, TeamID: &teamID},
	}}
	gate := newGate(users, &stubBans{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  SessionCookie,
		Value: signToken(t, testKey, testIssuer, "uid-1", "Ada@gsv.ac.in", true),
	})

	id, ok := serveWithGate(gate, req)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if id.UserID != "uid-1" || !id.UserExists {
		t.Errorf("identity = %+v, want registered uid-1", id)
	}
	if id.Email != "ada@gsv.ac.in" {
		t.Errorf("Email = %q, want lowercased", id.Email)
	}
	if !id.EmailVerified {
		t.Error("EmailVerified should carry through")
	}
	if id.TeamID == nil || *id.TeamID != teamID {
		t.Errorf("TeamID = %v, want %v", id.TeamID, teamID)
	}
	if id.Banned {
		t.Error("team is not banned")
	}
}

func TestMiddlewareBearerHeader(t *testing.T) {
	users := &stubUsers{users: map[string]models.User{
		"uid-1": {ID: "uid-1", Role: models.RoleMember},
	}}
	gate := newGate(users, &stubBans{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization",
		"Bearer "+signToken(t, testKey, testIssuer, "uid-1", "ada@gsv.ac.in", true))

	id, ok := serveWithGate(gate, req)
	if !ok || id.UserID != "uid-1" {
		t.Fatalf("identity = %v, want uid-1 via bearer header", id)
	}
}

func TestMiddlewareUnregisteredSubject(t *testing.T) {
	gate := newGate(&stubUsers{users: map[string]models.User{}}, &stubBans{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  SessionCookie,
		Value: signToken(t, testKey, testIssuer, "uid-new", "new@gsv.ac.in", true),
	})

	id, ok := serveWithGate(gate, req)
	if !ok {
		t.Fatal("expected identity for valid token of unregistered subject")
	}
	if !id.SignedIn() || id.UserExists {
		t.Errorf("identity = %+v, want signed in but not registered", id)
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	users := &stubUsers{users: map[string]models.User{
		"uid-1": {ID: "uid-1", Role: models.RoleMember},
	}}
	gate := newGate(users, &stubBans{})

	cases := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage", "not-a-token"},
		{"wrong key", signToken(t, "ffffffffffffffffffffffffffffffff", testIssuer, "uid-1", "a@b.c", true)},
		{"wrong issuer", signToken(t, testKey, "someone-else", "uid-1", "a@b.c", true)},
		{"empty subject", signToken(t, testKey, testIssuer, "", "a@b.c", true)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.token})
			}
			if id, ok := serveWithGate(gate, req); ok {
				t.Errorf("expected anonymous, got %+v", id)
			}
		})
	}
}

func TestMiddlewareMarksBannedTeam(t *testing.T) {
	teamID := primitive.NewObjectID()
	users := &stubUsers{users: map[string]models.User{
		"uid-1": {ID: "uid-1", Role: models.RoleMember, TeamID: &teamID},
	}}
	bans := &stubBans{banned: map[primitive.ObjectID]bool{teamID: true}}
	gate := newGate(users, bans)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  SessionCookie,
		Value: signToken(t, testKey, testIssuer, "uid-1", "ada@gsv.ac.in", true),
	})

	id, ok := serveWithGate(gate, req)
	if !ok || !id.Banned {
		t.Fatalf("identity = %+v, want banned", id)
	}
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireUser(next)

	cases := []struct {
		name string
		id   *Identity
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"unregistered", &Identity{UserID: "uid-1"}, http.StatusUnauthorized},
		{"banned", &Identity{UserID: "uid-1", UserExists: true, Banned: true}, http.StatusForbidden},
		{"registered", &Identity{UserID: "uid-1", UserExists: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.id != nil {
				req = WithTestIdentity(req, tc.id)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAdmin(next)

	member := &Identity{UserID: "uid-1", UserExists: true, Role: models.RoleMember}
	admin := &Identity{UserID: "uid-2", UserExists: true, Role: models.RoleAdmin}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestIdentity(httptest.NewRequest(http.MethodGet, "/", nil), member))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestIdentity(httptest.NewRequest(http.MethodGet, "/", nil), admin))
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
