// Package cached decorates a preference.Gateway with a read-through cache so
// switching back to a project does not hit the database again.
package cached

import (
	"context"
	"errors"
	"time"

	"github.com/zjrosen/issueview/internal/cachemanager"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
)

// Key is a cache key for one project's remembered record.
type Key string

// KeyFor returns the cache key of projectID.
func KeyFor(projectID string) Key {
	return Key("pref:" + projectID)
}

// Entry is the cached value. Missing records are cached too, so a project
// with no remembered preference is only queried once per TTL.
type Entry struct {
	remembered preference.Remembered
	missing    bool
}

// Gateway caches Load results and invalidates them on every write.
// Concurrent loads of the same project share one call to the backend.
type Gateway struct {
	next preference.Gateway
	rtc  *cachemanager.ReadThroughCache[Key, Entry, string]
	ttl  time.Duration
}

// NewGateway wraps next with a cache. A ttl <= 0 disables caching and every
// call goes straight to next.
func NewGateway(next preference.Gateway, cache cachemanager.CacheManager[Key, Entry], ttl time.Duration) *Gateway {
	g := &Gateway{next: next, ttl: ttl}
	g.rtc = cachemanager.NewReadThroughCache[Key, Entry, string](cache, g.load, ttl <= 0)
	return g
}

// NewInMemoryGateway wraps next with a go-cache backed cache.
func NewInMemoryGateway(next preference.Gateway, ttl time.Duration) *Gateway {
	cache := cachemanager.NewInMemoryCacheManager[Key, Entry]("preferences", ttl, 2*ttl+time.Minute)
	return NewGateway(next, cache, ttl)
}

var _ preference.Gateway = (*Gateway)(nil)

func (g *Gateway) load(ctx context.Context, projectID string) (Entry, error) {
	rem, err := g.next.Load(ctx, projectID)
	if errors.Is(err, preference.ErrNotFound) {
		return Entry{missing: true}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{remembered: rem}, nil
}

// Load returns the cached record or loads it from the backend.
func (g *Gateway) Load(ctx context.Context, projectID string) (preference.Remembered, error) {
	e, err := g.rtc.Get(ctx, KeyFor(projectID), projectID, g.ttl)
	if err != nil {
		return preference.Remembered{}, err
	}
	if e.missing {
		return preference.Remembered{}, preference.ErrNotFound
	}
	return e.remembered, nil
}

// Save writes through and drops the cached record.
func (g *Gateway) Save(ctx context.Context, projectID string, current preference.Snapshot) error {
	defer g.invalidate(ctx, projectID)
	return g.next.Save(ctx, projectID, current)
}

// SaveAsDefault writes through and drops the cached record.
func (g *Gateway) SaveAsDefault(ctx context.Context, projectID string, snapshot preference.Snapshot) error {
	defer g.invalidate(ctx, projectID)
	return g.next.SaveAsDefault(ctx, projectID, snapshot)
}

// Invalidate drops the cached record of projectID, for example after the
// database changed underneath the process.
func (g *Gateway) Invalidate(ctx context.Context, projectID string) {
	g.invalidate(ctx, projectID)
}

func (g *Gateway) invalidate(ctx context.Context, projectID string) {
	if err := g.rtc.Invalidate(ctx, KeyFor(projectID)); err != nil {
		log.ErrorErr(log.CatCache, "invalidate remembered preference", err, "project", projectID)
	}
}
