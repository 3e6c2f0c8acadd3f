// internal/app/features/bonus/handler.go
package bonus

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bonusstore "github.com/dalemusser/questhub/internal/app/store/bonuses"
	logstore "github.com/dalemusser/questhub/internal/app/store/logs"
	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
	"github.com/dalemusser/questhub/internal/app/system/apierr"
	"github.com/dalemusser/questhub/internal/app/system/identity"
	"github.com/dalemusser/questhub/internal/app/system/normalize"
	"github.com/dalemusser/questhub/internal/app/system/timeouts"
	"github.com/dalemusser/questhub/internal/app/system/txn"
	"github.com/dalemusser/questhub/internal/domain/models"
)

// Handler implements the bonus question lifecycle: scan, claim, solve,
// listing, and admin seeding.
type Handler struct {
	DB      *mongo.Database
	Bonuses *bonusstore.Store
	Teams   *teamstore.Store
	Logs    *logstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, bonuses *bonusstore.Store, teams *teamstore.Store, logs *logstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Bonuses: bonuses,
		Teams:   teams,
		Logs:    logs,
		Log:     logger,
	}
}

// teamOf extracts the caller's team id, or a typed error when the caller is
// not on a team.
func teamOf(r *http.Request) (primitive.ObjectID, error) {
	id, ok := identity.FromRequest(r)
	if !ok || id.TeamID == nil {
		return primitive.NilObjectID, apierr.New(apierr.Unauthorized, "join a team first")
	}
	return *id.TeamID, nil
}

func callerID(r *http.Request) string {
	id, _ := identity.FromRequest(r)
	if id == nil {
		return ""
	}
	return id.UserID
}

type codeRequest struct {
	QRCode string `json:"qr_code"`
}

type claimResponse struct {
	Success        bool   `json:"success"`
	AlreadyClaimed bool   `json:"already_claimed"`
	Title          string `json:"title"`
	Hint           string `json:"hint"`
	Question       string `json:"question"`
	Points         int    `json:"points"`
}

// ServeClaim handles POST /bonus/claim. First claimer wins; a repeat claim
// by the owning team is an idempotent success that returns the same payload
// without writing anything. No points move at claim time.
func (h *Handler) ServeClaim(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamOf(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	code := normalize.Code(req.QRCode)
	if code == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "qr_code is required"))
		return
	}

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var resp claimResponse
	err = txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
		q, err := h.Bonuses.GetByCode(ctx, code)
		if err == mongo.ErrNoDocuments {
			return apierr.New(apierr.NotFound, "no bonus for that code")
		}
		if err != nil {
			return err
		}

		resp = claimResponse{
			Success:  true,
			Title:    q.Title,
			Hint:     q.Hint,
			Question: q.Question,
			Points:   q.Points,
		}

		if q.Claimed {
			if q.ClaimedBy != nil && *q.ClaimedBy == teamID {
				// Repeat scan by the owner: same payload, no writes.
				resp.AlreadyClaimed = true
				return nil
			}
			return apierr.New(apierr.Conflict, "bonus already claimed by another team")
		}

		now := time.Now().UTC()
		if err := h.Bonuses.MarkClaimed(ctx, code, teamID, now); err != nil {
			return err
		}
		if err := h.Teams.AddActiveBonus(ctx, teamID, code); err != nil {
			return err
		}
		return h.Logs.Append(ctx, teamID, models.LogEntry{
			Timestamp: now,
			Type:      models.LogBonusClaim,
			BonusCode: code,
			UserID:    callerID(r),
		})
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, resp)
}

type solveRequest struct {
	QRCode string `json:"qr_code"`
	Answer string `json:"answer"`
}

type solveResponse struct {
	Success bool `json:"success"`
	Correct bool `json:"correct"`
	Points  int  `json:"points,omitempty"`
	Penalty int  `json:"penalty,omitempty"`
}

// ServeSolve handles POST /bonus/solve. Only the claiming team may solve.
// A wrong answer costs the configured penalty, leaves the question open, and
// is still HTTP 200: the request worked, the answer did not.
func (h *Handler) ServeSolve(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamOf(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	code := normalize.Code(req.QRCode)
	answer := normalize.Answer(req.Answer)
	if code == "" || answer == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "qr_code and answer are required"))
		return
	}

	txnCtx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var resp solveResponse
	err = txn.Run(txnCtx, h.DB, h.Log, func(ctx context.Context) error {
		q, err := h.Bonuses.GetByCode(ctx, code)
		if err == mongo.ErrNoDocuments {
			return apierr.New(apierr.NotFound, "no bonus for that code")
		}
		if err != nil {
			return err
		}
		if q.Solved {
			return apierr.New(apierr.Conflict, "bonus already solved")
		}
		if !q.Visible {
			return apierr.New(apierr.NotFound, "bonus is not available")
		}
		if !q.Claimed || q.ClaimedBy == nil || *q.ClaimedBy != teamID {
			return apierr.New(apierr.Unauthorized, "claim the bonus before solving it")
		}

		now := time.Now().UTC()
		if answer == normalize.Answer(q.Answer) {
			if err := h.Bonuses.MarkSolved(ctx, code, teamID, now); err != nil {
				return err
			}
			if err := h.Teams.ApplySolve(ctx, teamID, code, q.Points); err != nil {
				return err
			}
			resp = solveResponse{Success: true, Correct: true, Points: q.Points}
			return h.Logs.Append(ctx, teamID, models.LogEntry{
				Timestamp: now,
				Type:      models.LogBonusSolve,
				BonusCode: code,
				UserID:    callerID(r),
				Answer:    answer,
			})
		}

		penalty := q.NegativePoints
		if penalty < 0 {
			penalty = -penalty
		}
		if err := h.Teams.ApplyPenalty(ctx, teamID, q.NegativePoints); err != nil {
			return err
		}
		resp = solveResponse{Success: true, Correct: false, Penalty: penalty}
		return h.Logs.Append(ctx, teamID, models.LogEntry{
			Timestamp: now,
			Type:      models.LogBonusFail,
			BonusCode: code,
			UserID:    callerID(r),
			Answer:    answer,
		})
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, resp)
}

type scanResponse struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`
	Hint    string `json:"hint"`
}

// ServeScan handles POST /bonus/scan. Scanning records the code against the
// team and reveals the hint; it stakes no claim.
func (h *Handler) ServeScan(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamOf(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	code := normalize.Code(req.QRCode)
	if code == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "qr_code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Bonuses.GetByCode(ctx, code)
	if err == mongo.ErrNoDocuments {
		apierr.Write(w, h.Log, apierr.New(apierr.NotFound, "no bonus for that code"))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if err := h.Teams.AddScannedCode(ctx, teamID, code); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, scanResponse{Success: true, Title: q.Title, Hint: q.Hint})
}

type listResponse struct {
	Questions []models.BonusQuestion `json:"questions"`
}

// ServeList handles GET /bonus: visible questions plus the caller team's own
// claims, answer text always stripped by the store.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamOf(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	questions, err := h.Bonuses.ListForTeam(ctx, teamID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if questions == nil {
		questions = []models.BonusQuestion{}
	}

	apierr.WriteJSON(w, http.StatusOK, listResponse{Questions: questions})
}

type upsertRequest struct {
	Code           string `json:"code"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Points         int    `json:"points"`
	NegativePoints int    `json:"negative_points"`
	Hint           string `json:"hint"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Visible        bool   `json:"visible"`
}

// ServeUpsert handles POST /admin/bonus. Seeds or updates a question; claim
// and solve state on an existing document is preserved.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "malformed request body"))
		return
	}
	code := normalize.Code(req.Code)
	if code == "" || req.Title == "" || req.Answer == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.InvalidInput, "code, title, and answer are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Bonuses.Upsert(ctx, models.BonusQuestion{
		Code:           code,
		Title:          req.Title,
		Description:    req.Description,
		Points:         req.Points,
		NegativePoints: req.NegativePoints,
		Hint:           req.Hint,
		Question:       req.Question,
		Answer:         normalize.Answer(req.Answer),
		Visible:        req.Visible,
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
