// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	reservstore "github.com/dalemusser/questhub/internal/app/store/reservations"
	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
	userstore "github.com/dalemusser/questhub/internal/app/store/users"
	"github.com/dalemusser/questhub/internal/app/system/apierr"
	"github.com/dalemusser/questhub/internal/app/system/identity"
	"github.com/dalemusser/questhub/internal/app/system/invite"
	"github.com/dalemusser/questhub/internal/app/system/lockwindow"
	"github.com/dalemusser/questhub/internal/app/system/normalize"
	"github.com/dalemusser/questhub/internal/app/system/notify"
	"github.com/dalemusser/questhub/internal/app/system/timeouts"
	"github.com/dalemusser/questhub/internal/app/system/txn"
	"github.com/dalemusser/questhub/internal/domain/models"
)

// createAttempts bounds whole-transaction retries on invite code collisions.
const createAttempts = 3

// Handler implements the team lifecycle: create, join, leave. Every
// operation is one transaction; preconditions are re-checked from reads
// taken inside it.
type Handler struct {
	DB        *mongo.Database
	Users     *userstore.Store
	Teams     *teamstore.Store
	TeamNames *reservstore.Store
	Notifier  *notify.Notifier
	Log       *zap.Logger

	// EmailDomain is the organizational domain whose members count as
	// verified. Empty disables the check (every team stays verified).
	EmailDomain string
	CodeLength  int
	LeaveWindow lockwindow.Window
}

func NewHandler(db *mongo.Database, users *userstore.Store, teams *teamstore.Store, teamNames *reservstore.Store, notifier *notify.Notifier, logger *zap.Logger, emailDomain string, codeLength int, leaveWindow lockwindow.Window) *Handler {
	if codeLength <= 0 {
		codeLength = invite.DefaultLength
	}
	return &Handler{
		DB:          db,
		Users:       users,
		Teams:       teams,
		TeamNames:   teamNames,
		Notifier:    notifier,
		Log:         logger,
		EmailDomain: emailDomain,
		CodeLength:  codeLength,
		LeaveWindow: leaveWindow,
	}
}

// domainVerified reports whether email satisfies the organizational-domain
// rule. Verification is an AND across members; this is the per-member term.
func (h *Handler) domainVerified(email string) bool {
	if h.EmailDomain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+h.EmailDomain)
}

type createRequest struct {
	TeamName string `json:"team_name"`
}

type teamResponse struct {
	Success bool   `json:"success"`
	TeamID  string `json:"team_id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
}

// ServeCreate handles POST /team/create. Name reservation, team insert, and
// the caller's team pointer are one transaction. An invite code collision
// aborts the whole transaction and retries it from scratch.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromRequest(r)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	name := normalize.Key(req.TeamName)
	if name == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "team name is required"))
		return
	}

	probeCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Advisory probe for fast feedback; the transaction re-checks.
	taken, err := h.TeamNames.Probe(probeCtx, name)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if taken {
		apierr.Write(w, h.Log, apierr.New(apierr.Conflict, "team name is already taken"))
		return
	}

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var created models.Team
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
			user, err := h.Users.GetByID(ctx, id.UserID)
			if err != nil {
				return err
			}
			if user.TeamID != nil {
				return apierr.New(apierr.Unauthorized, "already in a team")
			}

			if err := h.TeamNames.Reserve(ctx, name, id.UserID); err != nil {
				if err == reservstore.ErrTaken {
					return apierr.New(apierr.Conflict, "team name is already taken")
				}
				return err
			}

			code := invite.New(h.CodeLength)
			exists, err := h.Teams.CodeExists(ctx, code)
			if err != nil {
				return err
			}
			if exists {
				return apierr.New(apierr.Retryable, "invite code collision")
			}

			now := time.Now().UTC()
			team := models.Team{
				ID:            primitive.NewObjectID(),
				Name:          name,
				Code:          code,
				OwnerID:       id.UserID,
				Members:       []string{id.UserID},
				Level:         1,
				Verified:      h.domainVerified(user.Email),
				ActiveBonuses: []string{},
				SolvedBonuses: []string{},
				ScannedCodes:  []string{},
				CreatedAt:     now,
				LastChange:    now,
			}
			if err := h.Teams.Insert(ctx, team); err != nil {
				return err
			}
			if err := h.Users.SetTeam(ctx, id.UserID, team.ID); err != nil {
				return err
			}
			created = team
			return nil
		})
		if apierr.KindOf(err) != apierr.Retryable {
			break
		}
		h.Log.Warn("invite code collision, retrying create",
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	countCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if count, err := h.Teams.Count(countCtx); err == nil {
		h.Notifier.Send(fmt.Sprintf("New team %q formed. %d teams are in the hunt.", created.Name, count))
	}

	apierr.WriteJSON(w, http.StatusOK, teamResponse{
		Success: true,
		TeamID:  created.ID.Hex(),
		Name:    created.Name,
		Code:    created.Code,
	})
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

// ServeJoin handles POST /team/join. The code lookup happens outside the
// transaction (codes are not the document key); everything that matters is
// re-validated from an in-transaction read of the team.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromRequest(r)

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	code := normalize.Code(req.InviteCode)
	if code == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "invite code is required"))
		return
	}

	lookupCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	found, err := h.Teams.GetByCode(lookupCtx, code)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, h.Log, apierr.New(apierr.NotFound, "no team with that invite code"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var joined models.Team
	err = txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
		user, err := h.Users.GetByID(ctx, id.UserID)
		if err != nil {
			return err
		}
		if user.TeamID != nil {
			return apierr.New(apierr.Unauthorized, "already in a team")
		}

		team, err := h.Teams.GetByID(ctx, found.ID)
		if err == mongo.ErrNoDocuments {
			return apierr.New(apierr.NotFound, "team no longer exists")
		}
		if err != nil {
			return err
		}
		if team.HasMember(id.UserID) {
			return apierr.New(apierr.Conflict, "already a member of this team")
		}
		if len(team.Members) >= models.MaxTeamSize {
			return apierr.New(apierr.Conflict, "team is full")
		}

		clearVerified := team.Verified && !h.domainVerified(user.Email)
		if err := h.Teams.AddMember(ctx, team.ID, id.UserID, clearVerified); err != nil {
			return err
		}
		if err := h.Users.SetTeam(ctx, id.UserID, team.ID); err != nil {
			return err
		}
		joined = *team
		return nil
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, teamResponse{
		Success: true,
		TeamID:  joined.ID.Hex(),
		Name:    joined.Name,
	})
}

type leaveResponse struct {
	Success   bool `json:"success"`
	Disbanded bool `json:"disbanded"`
}

// ServeLeave handles POST /team/leave. The lock window and the caller's
// role are evaluated from data read inside the transaction, not before it.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromRequest(r)

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var disbanded bool
	err := txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
		disbanded = false

		user, err := h.Users.GetByID(ctx, id.UserID)
		if err != nil {
			return err
		}
		if user.TeamID == nil {
			return apierr.New(apierr.Unauthorized, "not in a team")
		}
		if !h.LeaveWindow.CanLeave(time.Now().UTC(), user.Role) {
			return apierr.New(apierr.Unauthorized, "team changes are locked for the rest of the event")
		}

		team, err := h.Teams.GetByID(ctx, *user.TeamID)
		if err == mongo.ErrNoDocuments {
			return apierr.New(apierr.NotFound, "team no longer exists")
		}
		if err != nil {
			return err
		}

		remaining := make([]string, 0, len(team.Members))
		for _, m := range team.Members {
			if m != id.UserID {
				remaining = append(remaining, m)
			}
		}

		if len(remaining) == 0 {
			// Last member out: the team and its name reservation go together.
			if err := h.Teams.Delete(ctx, team.ID); err != nil {
				return err
			}
			if err := h.TeamNames.Release(ctx, team.Name); err != nil {
				return err
			}
			disbanded = true
		} else {
			verified, err := h.rosterVerified(ctx, remaining)
			if err != nil {
				return err
			}
			if err := h.Teams.SetRoster(ctx, team.ID, remaining[0], remaining, verified); err != nil {
				return err
			}
		}

		return h.Users.ClearTeam(ctx, id.UserID)
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, leaveResponse{Success: true, Disbanded: disbanded})
}

// rosterVerified recomputes team verification across the remaining members'
// stored emails, short-circuiting false. A member without a readable user
// record counts as unverified.
func (h *Handler) rosterVerified(ctx context.Context, memberIDs []string) (bool, error) {
	users, err := h.Users.GetByIDs(ctx, memberIDs)
	if err != nil {
		return false, err
	}
	if len(users) != len(memberIDs) {
		return false, nil
	}
	for _, u := range users {
		if !h.domainVerified(u.Email) {
			return false, nil
		}
	}
	return true, nil
}
