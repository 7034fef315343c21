package slidingcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock abstracts time.Now so expiration can be driven in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
func SystemClock() Clock { return systemClock{} }

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is an in-memory cache with sliding expiration: every successful
// read pushes the entry's deadline out by the full TTL, so an entry that
// is read periodically never expires, while one left untouched for the
// whole window is recomputed on next access.
//
// Concurrent loads for the same key are collapsed to a single store read
// via singleflight; recomputation is idempotent so this is a pure
// de-duplication, not a correctness requirement.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	gens    map[string]uint64
	ttl     time.Duration
	clock   Clock
	sf      singleflight.Group
}

// New creates a cache whose entries live for ttl after their last read.
func New[V any](ttl time.Duration, clock Clock) *Cache[V] {
	if clock == nil {
		clock = systemClock{}
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached value for key, loading and storing it via load
// when the entry is absent or expired. A hit slides the expiration.
func (c *Cache[V]) Get(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	res, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another flight may have populated the entry while we waited.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		c.mu.Lock()
		gen := c.gens[key]
		c.mu.Unlock()

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		// An Invalidate that ran while the load was in flight bumped the
		// generation; storing now would resurrect pre-write data, so the
		// result is returned to this flight's waiters but not cached.
		c.mu.Lock()
		if c.gens[key] == gen {
			c.entries[key] = &entry[V]{value: v, expiresAt: c.clock.Now().Add(c.ttl)}
		}
		c.mu.Unlock()

		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(V), nil
}

// Invalidate drops the entry for key. The next Get recomputes from the
// store, so a write that invalidates before acknowledging guarantees
// read-your-writes within the process.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()

	// Forget any in-flight load so late arrivals observe the write.
	c.sf.Forget(key)
}

// Len reports the number of live (possibly expired) entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	now := c.clock.Now()
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	e.expiresAt = now.Add(c.ttl)
	return e.value, true
}
