// Package bans keeps an in-memory set of banned team ids, kept current from
// a change stream over the teams collection. Requests consult the set
// without touching the database.
package bans

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	teamstore "github.com/dalemusser/questhub/internal/app/store/teams"
)

// pollInterval drives the fallback refresh loop when change streams are not
// available (standalone mongod without a replica set).
const pollInterval = 15 * time.Second

type banSet map[primitive.ObjectID]struct{}

// Cache is the live banned-team set. A request observes one atomic snapshot;
// updates swap the whole set, never mutate it in place.
type Cache struct {
	teams *teamstore.Store
	log   *zap.Logger

	start sync.Once
	set   atomic.Pointer[banSet]
}

func New(teams *teamstore.Store, logger *zap.Logger) *Cache {
	c := &Cache{teams: teams, log: logger}
	empty := banSet{}
	c.set.Store(&empty)
	return c
}

// IsBanned reports whether the team id is in the current snapshot.
func (c *Cache) IsBanned(id primitive.ObjectID) bool {
	_, banned := (*c.set.Load())[id]
	return banned
}

// Refresh re-queries the banned set and swaps the snapshot. Called once at
// startup, on every change event, and directly by tests.
func (c *Cache) Refresh(ctx context.Context) error {
	ids, err := c.teams.BannedIDs(ctx)
	if err != nil {
		return err
	}
	next := make(banSet, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	c.set.Store(&next)
	return nil
}

// Start loads the initial set and launches the watcher. Subsequent calls are
// no-ops. The watcher runs until ctx is canceled.
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
			c.log.Warn("ban watch unavailable, polling instead", zap.Error(err))
			c.poll(ctx)
			return
		}

		for stream.Next(ctx) {
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn("ban set refresh failed", zap.Error(err))
			}
		}
		_ = stream.Close(context.Background())

		if ctx.Err() != nil {
			return
		}
		c.log.Warn("ban watch stream ended, reopening", zap.Error(stream.Err()))
		time.Sleep(time.Second)
	}
}

// poll is the degraded mode: periodic re-query on a fixed interval. Requests
// keep working off a slightly stale set rather than failing.
func (c *Cache) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn("ban set refresh failed", zap.Error(err))
			}
		}
	}
}
