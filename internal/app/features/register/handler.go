// internal/app/features/register/handler.go
package register

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	reservstore "github.com/dalemusser/questhub/internal/app/store/reservations"
	userstore "github.com/dalemusser/questhub/internal/app/store/users"
	"github.com/dalemusser/questhub/internal/app/system/apierr"
	"github.com/dalemusser/questhub/internal/app/system/identity"
	"github.com/dalemusser/questhub/internal/app/system/normalize"
	"github.com/dalemusser/questhub/internal/app/system/notify"
	"github.com/dalemusser/questhub/internal/app/system/timeouts"
	"github.com/dalemusser/questhub/internal/app/system/txn"
	"github.com/dalemusser/questhub/internal/domain/models"
)

// Handler creates user records for signed-in callers on their first visit.
type Handler struct {
	DB        *mongo.Database
	Users     *userstore.Store
	Usernames *reservstore.Store
	Notifier  *notify.Notifier
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, users *userstore.Store, usernames *reservstore.Store, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Users:     users,
		Usernames: usernames,
		Notifier:  notifier,
		Log:       logger,
	}
}

type registerRequest struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Username string `json:"username"`
}

type registerResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// ServeRegister handles POST /register. The caller must hold a valid session
// token but must not have a user record yet. The username reservation and
// the user document are written in one transaction.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromRequest(r)
	if !ok || !id.SignedIn() {
		apierr.Write(w, h.Log, apierr.New(apierr.Unauthenticated, "sign in required"))
		return
	}
	if id.UserExists {
		apierr.Write(w, h.Log, apierr.New(apierr.Conflict, "account already registered"))
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}

	first := normalize.DisplayName(req.First)
	last := normalize.DisplayName(req.Last)
	username := normalize.Key(req.Username)
	if first == "" || last == "" || username == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "first, last, and username are required"))
		return
	}

	probeCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Advisory probe for fast feedback; the transaction re-checks.
	taken, err := h.Usernames.Probe(probeCtx, username)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if taken {
		apierr.Write(w, h.Log, apierr.New(apierr.Conflict, "username is already taken"))
		return
	}

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err = txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Usernames.Reserve(ctx, username, id.UserID); err != nil {
			if err == reservstore.ErrTaken {
				return apierr.New(apierr.Conflict, "username is already taken")
			}
			return err
		}
		_, err := h.Users.Create(ctx, models.User{
			ID:       id.UserID,
			First:    first,
			Last:     last,
			Username: username,
			Email:    id.Email,
		})
		return err
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Notifier.Send(fmt.Sprintf("New player registered: %s", username))

	apierr.WriteJSON(w, http.StatusOK, registerResponse{Success: true, Username: username})
}
