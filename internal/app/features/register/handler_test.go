package register_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/questhub/internal/app/features/register"
	reservstore "github.com/dalemusser/questhub/internal/app/store/reservations"
	userstore "github.com/dalemusser/questhub/internal/app/store/users"
	"github.com/dalemusser/questhub/internal/app/system/notify"
	"github.com/dalemusser/questhub/internal/testutil"
)

func newHandler(db *mongo.Database) *register.Handler {
	return register.NewHandler(
		db,
		userstore.New(db),
		reservstore.New(db, reservstore.Usernames),
		notify.New("", zap.NewNop()),
		zap.NewNop(),
	)
}

func TestRegisterCreatesUserAndReservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body := map[string]string{"first": "Ada", "last": "Lovelace", "username": "Ada42"}
	req := testutil.NewAuthedJSONRequest(t, http.MethodPost, "/register", body,
		testutil.UnregisteredIdentity("uid-1", "ada@gsv.ac.in", true))
	rec := httptest.NewRecorder()
	h.ServeRegister(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	user, err := userstore.New(db).GetByID(ctx, "uid-1")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Username != "ada42" {
		t.Errorf("Username = %q, want folded ada42", user.Username)
	}
	if user.Email != "ada@gsv.ac.in" {
		t.Errorf("Email = %q", user.Email)
	}

	res, err := reservstore.New(db, reservstore.Usernames).Get(ctx, "ada42")
	if err != nil {
		t.Fatalf("reservation not created: %v", err)
	}
	if res.OwnerID != "uid-1" {
		t.Errorf("reservation owner = %q, want uid-1", res.OwnerID)
	}
}

func TestRegisterTakenUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.ReserveName(ctx, reservstore.Usernames, "ada42", "uid-0")

	body := map[string]string{"first": "Ada", "last": "Lovelace", "username": "ada42"}
	req := testutil.NewAuthedJSONRequest(t, http.MethodPost, "/register", body,
		testutil.UnregisteredIdentity("uid-1", "ada@gsv.ac.in", true))
	rec := httptest.NewRecorder()
	h.ServeRegister(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := testutil.ErrorCode(t, rec); code != "conflict" {
		t.Errorf("error code = %q, want conflict", code)
	}

	// The losing attempt must leave no partial state.
	if _, err := userstore.New(db).GetByID(ctx, "uid-1"); err == nil {
		t.Error("user record created despite taken username")
	}
}

func TestRegisterRejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{
			"anonymous",
			testutil.NewJSONRequest(t, http.MethodPost, "/register",
				map[string]string{"first": "A", "last": "B", "username": "ab"}),
			http.StatusUnauthorized,
		},
		{
			"already registered",
			testutil.NewAuthedJSONRequest(t, http.MethodPost, "/register",
				map[string]string{"first": "A", "last": "B", "username": "ab"},
				testutil.SoloIdentity("uid-1")),
			http.StatusConflict,
		},
		{
			"missing fields",
			testutil.NewAuthedJSONRequest(t, http.MethodPost, "/register",
				map[string]string{"first": "A"},
				testutil.UnregisteredIdentity("uid-2", "a@gsv.ac.in", true)),
			http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeRegister(rec, tc.req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
