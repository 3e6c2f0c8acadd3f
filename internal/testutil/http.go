package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/questhub/internal/app/system/identity"
	"github.com/dalemusser/questhub/internal/domain/models"
)

// MemberIdentity returns an identity for a registered member of the given team.
func MemberIdentity(userID string, teamID primitive.ObjectID) *identity.Identity {
	return &identity.Identity{
		UserID:        userID,
		Email:         userID + "@gsv.ac.in",
		EmailVerified: true,
		UserExists:    true,
		Role:          models.RoleMember,
		TeamID:        &teamID,
	}
}

// SoloIdentity returns an identity for a registered user without a team.
func SoloIdentity(userID string) *identity.Identity {
	return &identity.Identity{
		UserID:        userID,
		Email:         userID + "@gsv.ac.in",
		EmailVerified: true,
		UserExists:    true,
		Role:          models.RoleMember,
	}
}

// AdminIdentity returns an identity with the admin role.
func AdminIdentity(userID string) *identity.Identity {
	return &identity.Identity{
		UserID:        userID,
		Email:         userID + "@gsv.ac.in",
		EmailVerified: true,
		UserExists:    true,
		Role:          models.RoleAdmin,
	}
}

// UnregisteredIdentity returns a signed-in identity with no user document.
func UnregisteredIdentity(userID, email string, verified bool) *identity.Identity {
	return &identity.Identity{
		UserID:        userID,
		Email:         email,
		EmailVerified: verified,
	}
}

// NewJSONRequest builds a request with the payload encoded as a JSON body.
func NewJSONRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthedJSONRequest builds a JSON request with an identity in context.
func NewAuthedJSONRequest(t *testing.T, method, target string, payload any, id *identity.Identity) *http.Request {
	t.Helper()
	return identity.WithTestIdentity(NewJSONRequest(t, method, target, payload), id)
}

// DecodeJSON decodes the recorded response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// ErrorCode extracts the error code from a recorded error envelope.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	DecodeJSON(t, rec, &envelope)
	return envelope.Error.Code
}
