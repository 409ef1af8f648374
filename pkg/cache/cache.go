// pkg/cache/cache.go
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/primait/jwks-client/pkg/keyset"
)

// FetchFunc retrieves a fresh key set, usually a Source's FetchKeys.
type FetchFunc func(ctx context.Context) (keyset.KeySet, error)

// Observer receives cache events. Implementations must be safe for
// concurrent use. All hooks are optional via NopObserver.
type Observer interface {
	// Lookup is called once per GetOrRefresh; hit means the key was served
	// from a fresh cached set without touching the source.
	Lookup(hit bool)
	// Refresh is called once per underlying fetch with its outcome.
	Refresh(err error, elapsed time.Duration)
	// StaleServed is called when an expired key is returned because the
	// refresh failed or dropped the kid.
	StaleServed()
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Lookup(bool)                  {}
func (NopObserver) Refresh(error, time.Duration) {}
func (NopObserver) StaleServed()                 {}

type entry struct {
	set       keyset.KeySet
	expiresAt time.Time
}

// expired uses strict greater-than: a set whose deadline is exactly now is
// still usable for this tick.
func (e entry) expired(now time.Time) bool { return now.After(e.expiresAt) }

// Cache holds the most recently fetched key set with its expiry and
// coordinates refreshes. One slot: the whole set is fetched atomically, so
// there is nothing to key refreshes on. Safe for concurrent use.
//
// Readers snapshot the entry under a read lock and never hold it across a
// fetch. Refreshes are collapsed through a singleflight group: concurrent
// callers share one in-flight fetch, and a caller that raced a completed
// refresh re-derives whether it still needs one before hitting the source.
type Cache struct {
	ttl time.Duration
	now func() time.Time
	obs Observer

	mu sync.RWMutex
	e  entry

	flight singleflight.Group
}

type Option func(*Cache)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver wires cache events to o.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.obs = o
		}
	}
}

// New builds a Cache whose entry starts empty and already expired, so the
// first lookup always refreshes.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl: ttl,
		now: time.Now,
		obs: NopObserver{},
		e:   entry{set: keyset.Empty()}, // zero expiresAt: expired from birth
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrRefresh returns the key for kid, refreshing the cached set through
// fetch when it is missing or expired.
//
// Failure policy: a refresh error is never fatal when a previously cached
// key exists, even an expired one; the stale key is returned instead. The
// same holds when a successful refresh no longer carries the kid. Only a
// kid absent from both the cached and the freshly fetched set surfaces
// keyset.KeyNotFoundError.
func (c *Cache) GetOrRefresh(ctx context.Context, kid string, fetch FetchFunc) (keyset.Key, error) {
	c.mu.RLock()
	snap := c.e
	c.mu.RUnlock()

	expired := snap.expired(c.now())
	stale, lookupErr := snap.set.Key(kid)
	found := lookupErr == nil

	c.obs.Lookup(found && !expired)
	if found && !expired {
		return stale, nil
	}

	set, err := c.refresh(ctx, kid, fetch)
	if err != nil {
		if found {
			c.obs.StaleServed()
			return stale, nil
		}
		return nil, err
	}

	if key, err := set.Key(kid); err == nil {
		return key, nil
	}
	if found {
		// The rotated set dropped the kid; prefer the stale key.
		c.obs.StaleServed()
		return stale, nil
	}
	return nil, keyset.KeyNotFoundError{KeyID: kid}
}

// refresh performs at most one fetch per cache instance at a time.
// Callers that arrive while a fetch is in flight wait for and share its
// result. The snapshot taken before entering may be outdated by the time
// the group admits us, so the callback re-checks the entry: if a completed
// refresh already made it fresh and it carries the kid, skip the source.
// A fresh entry that still misses the kid does not skip: a genuine miss
// must be answered by a real fetch.
func (c *Cache) refresh(ctx context.Context, kid string, fetch FetchFunc) (keyset.KeySet, error) {
	v, err, _ := c.flight.Do("refresh", func() (any, error) {
		c.mu.RLock()
		cur := c.e
		c.mu.RUnlock()

		if !cur.expired(c.now()) {
			if _, err := cur.set.Key(kid); err == nil {
				return cur.set, nil
			}
		}

		start := c.now()
		set, err := fetch(ctx)
		c.obs.Refresh(err, c.now().Sub(start))
		if err != nil {
			// Entry stays whatever it was, stale or empty.
			return nil, err
		}

		c.mu.Lock()
		c.e = entry{set: set, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return keyset.KeySet{}, err
	}
	return v.(keyset.KeySet), nil
}
