// internal/app/features/leaderboard/cache.go
package leaderboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
)

const pollInterval = 15 * time.Second

// Row is one leaderboard entry as served to clients. Scores are derived
// from level so every team on the same level shows the same score; the raw
// bonus score is deliberately not exposed.
type Row struct {
	TeamName    string `json:"team_name"`
	Score       int    `json:"score"`
	MemberCount int    `json:"member_count"`
	Verified    bool   `json:"verified"`
}

// Cache holds the precomputed leaderboard rows. Reads are lock-free; every
// change event recomputes the full slice and swaps it in.
type Cache struct {
	teams *teamstore.Store
	log   *zap.Logger

	start sync.Once
	rows  atomic.Pointer[[]Row]
}

func NewCache(teams *teamstore.Store, logger *zap.Logger) *Cache {
	c := &Cache{teams: teams, log: logger}
	empty := []Row{}
	c.rows.Store(&empty)
	return c
}

// Rows returns the current snapshot. Callers must not modify it.
func (c *Cache) Rows() []Row {
	return *c.rows.Load()
}

// Refresh recomputes the leaderboard from the teams collection.
func (c *Cache) Refresh(ctx context.Context) error {
	teams, err := c.teams.ListByLevel(ctx)
	if err != nil {
		return err
	}
	next := make([]Row, 0, len(teams))
	for _, t := range teams {
		next = append(next, Row{
			TeamName:    t.Name,
			Score:       (t.Level - 1) * 100,
			MemberCount: len(t.Members),
			Verified:    t.Verified,
		})
	}
	c.rows.Store(&next)
	return nil
}

// Start loads the initial rows and launches the watcher. Subsequent calls
// are no-ops.
func (c *Cache) Start(ctx context.Context) error {
	var err error
	c.start.Do(func() {
		if err = c.Refresh(ctx); err != nil {
			return
		}
		go c.watch(ctx)
	})
	return err
}

func (c *Cache) watch(ctx context.Context) {
	for ctx.Err() == nil {
		stream, err := c.teams.Watch(ctx)
		if err != nil {
			c.log.Warn("leaderboard watch unavailable, polling instead", zap.Error(err))
			c.poll(ctx)
			return
		}

		for stream.Next(ctx) {
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn("leaderboard refresh failed", zap.Error(err))
			}
		}
		_ = stream.Close(context.Background())

		if ctx.Err() != nil {
			return
		}
		c.log.Warn("leaderboard stream ended, reopening", zap.Error(stream.Err()))
		time.Sleep(time.Second)
	}
}

func (c *Cache) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn("leaderboard refresh failed", zap.Error(err))
			}
		}
	}
}
