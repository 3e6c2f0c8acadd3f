// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

// GetByID loads a team. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByCode finds a team by invite code. Codes are not the document key, so
// join uses this lookup to learn the id and then re-resolves the team inside
// its transaction.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CodeExists reports whether any team already uses code. Run with the create
// transaction's context so the check holds at commit time.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"code": code}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Insert writes a fully-populated team document.
func (s *Store) Insert(ctx context.Context, t models.Team) error {
	_, err := s.c.InsertOne(ctx, t)
	return err
}

// Delete removes a team document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddMember appends uid to the member set. clearVerified drops the
// verification flag when the joiner fails the domain check; joins never set
// the flag positively.
func (s *Store) AddMember(ctx context.Context, id primitive.ObjectID, uid string, clearVerified bool) error {
	set := bson.M{"last_change": time.Now().UTC()}
	if clearVerified {
		set["verified"] = false
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"members": uid},
		"$set":      set,
	})
	return err
}

// SetRoster rewrites owner, members, and the recomputed verification flag
// after a leave. Members keep their original join order.
func (s *Store) SetRoster(ctx context.Context, id primitive.ObjectID, owner string, members []string, verified bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"owner":       owner,
		"members":     members,
		"verified":    verified,
		"last_change": time.Now().UTC(),
	}})
	return err
}

// AddScannedCode records that the team has scanned a QR code.
func (s *Store) AddScannedCode(ctx context.Context, id primitive.ObjectID, code string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"scanned_codes": code},
	})
	return err
}

// AddActiveBonus records a claimed-but-unsolved bonus.
func (s *Store) AddActiveBonus(ctx context.Context, id primitive.ObjectID, code string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"active_bonuses": code},
		"$set":      bson.M{"last_change": time.Now().UTC()},
	})
	return err
}

// ApplySolve credits points for a solved bonus and moves the code from the
// active set to the solved set. The $inc is an additive merge, safe against
// concurrent score changes on other bonuses.
func (s *Store) ApplySolve(ctx context.Context, id primitive.ObjectID, code string, points int) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc":      bson.M{"bonus_score": points},
		"$addToSet": bson.M{"solved_bonuses": code},
		"$pull":     bson.M{"active_bonuses": code},
		"$set":      bson.M{"last_change": time.Now().UTC()},
	})
	return err
}

// ApplyPenalty debits a wrong-answer penalty. Magnitude only: the stored
// configuration may be negative and must never flip into an award.
func (s *Store) ApplyPenalty(ctx context.Context, id primitive.ObjectID, penalty int) error {
	if penalty < 0 {
		penalty = -penalty
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"bonus_score": -penalty},
		"$set": bson.M{"last_change": time.Now().UTC()},
	})
	return err
}

// Count returns the total number of teams (webhook announcements).
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// BannedIDs returns the ids of all banned teams. Source query for the
// banned-set cache.
func (s *Store) BannedIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"banned": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// ListByLevel returns all teams ordered by level descending, ties by most
// recent change. Source query for the leaderboard cache.
func (s *Store) ListByLevel(ctx context.Context) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: -1}, {Key: "last_change", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Watch opens a change stream over the teams collection. Callers re-query
// and swap their snapshot on every event rather than applying deltas.
func (s *Store) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	return s.c.Watch(ctx, mongo.Pipeline{})
}
