// Package cache memoizes resolved anchor results and guards recomputes
// against thundering herds.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/somnia-app/gosomnia/pkg/resonance"
)

// StalenessWindow is how old a cached result must be before a newer journal
// entry can force a recompute.
const StalenessWindow = 48 * time.Hour

// ComputeFunc produces a fresh result for an anchor key.
type ComputeFunc func() (*resonance.Result, error)

// AnchorCache caches anchor results keyed by their wire form. Entries never
// expire on their own; they are replaced when stale or explicitly
// invalidated.
type AnchorCache struct {
	store  *gocache.Cache
	group  singleflight.Group
	window time.Duration
	now    func() time.Time
}

// New creates an anchor cache with the default staleness window.
func New() *AnchorCache {
	return &AnchorCache{
		store:  gocache.New(gocache.NoExpiration, 0),
		window: StalenessWindow,
		now:    time.Now,
	}
}

// Resolve returns the cached result for key, recomputing when the cache
// misses or the cached result is stale relative to latestEntryAt. Concurrent
// resolves of the same key share a single compute call. The cache is only
// written after compute succeeds, so a failed compute leaves any previous
// result in place.
func (c *AnchorCache) Resolve(key string, latestEntryAt time.Time, compute ComputeFunc) (*resonance.Result, error) {
	if cached, ok := c.lookup(key, latestEntryAt); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// another resolve may have finished while we waited
		if cached, ok := c.lookup(key, latestEntryAt); ok {
			return cached, nil
		}

		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.store.Set(key, result, gocache.NoExpiration)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*resonance.Result), nil
}

// Invalidate drops the cached result for key, if any.
func (c *AnchorCache) Invalidate(key string) {
	c.store.Delete(key)
}

// Cached returns the raw cached result without staleness checks.
func (c *AnchorCache) Cached(key string) (*resonance.Result, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*resonance.Result), true
}

func (c *AnchorCache) lookup(key string, latestEntryAt time.Time) (*resonance.Result, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	result := v.(*resonance.Result)
	if c.stale(result, latestEntryAt) {
		return nil, false
	}
	return result, true
}

// stale requires both conditions: the result has aged past the window AND
// the journal gained an entry since it was computed. An old result over an
// unchanged journal stays valid.
func (c *AnchorCache) stale(r *resonance.Result, latestEntryAt time.Time) bool {
	return c.now().Sub(r.ComputedAt) > c.window && latestEntryAt.After(r.ComputedAt)
}
