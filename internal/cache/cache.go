// Package cache memoizes capabilities snapshots per endpoint.
//
// Entries are immutable and replaced atomically per key. A failed compute
// never touches an existing entry. There is no eviction: the key space is
// bounded by the service registry.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/logger"
)

// Entry is one stored snapshot.
type Entry struct {
	Key        string          `json:"key"`
	Value      domain.Snapshot `json:"value"`
	InsertedAt time.Time       `json:"inserted_at"`
}

// Outcome tells how GetOrCompute produced its entry.
type Outcome string

const (
	OutcomeHit        Outcome = "hit"
	OutcomeBackingHit Outcome = "backing_hit"
	OutcomeMiss       Outcome = "miss"
	OutcomeRefresh    Outcome = "refresh"
)

// ComputeFunc produces a fresh snapshot.
type ComputeFunc func(ctx context.Context) (domain.Snapshot, error)

// Backing is an optional shared second tier. Errors are logged, never returned
// to callers of the cache.
type Backing interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, e Entry) error
}

// Cache is safe for concurrent use.
type Cache struct {
	entries sync.Map // string -> *Entry
	group   singleflight.Group
	backing Backing
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

func WithBacking(b Backing) Option {
	return func(c *Cache) { c.backing = b }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(log logger.Logger, opts ...Option) *Cache {
	c := &Cache{log: log, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the entry for key, computing it when absent or when
// refresh is set. Concurrent computes for one key share a single call.
func (c *Cache) GetOrCompute(ctx context.Context, key string, refresh bool, compute ComputeFunc) (Entry, Outcome, error) {
	if !refresh {
		if e, ok := c.Peek(key); ok {
			return e, OutcomeHit, nil
		}
		if e, ok := c.loadBacking(ctx, key); ok {
			// A refresh may have landed while the backing was queried.
			c.Put(e)
			if cur, ok := c.Peek(key); ok {
				e = cur
			}
			return e, OutcomeBackingHit, nil
		}
	}

	outcome := OutcomeMiss
	if refresh {
		outcome = OutcomeRefresh
	}

	// The flight outlives a cancelled caller; compute is bounded by its own timeouts.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		snap, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}
		e := &Entry{Key: key, Value: snap, InsertedAt: c.now()}
		c.entries.Store(key, e)
		c.saveBacking(flightCtx, *e)
		return *e, nil
	})
	if err != nil {
		return Entry{}, outcome, err
	}
	return v.(Entry), outcome, nil
}

// Peek returns the in-memory entry for key without computing.
func (c *Cache) Peek(key string) (Entry, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return Entry{}, false
	}
	return *v.(*Entry), true
}

// Put stores e unless a newer entry for e.Key is already present.
func (c *Cache) Put(e Entry) {
	for {
		cur, loaded := c.entries.LoadOrStore(e.Key, &e)
		if !loaded {
			return
		}
		old := cur.(*Entry)
		if !old.InsertedAt.Before(e.InsertedAt) {
			return
		}
		if c.entries.CompareAndSwap(e.Key, old, &e) {
			return
		}
	}
}

func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Keys returns the stored keys, sorted.
func (c *Cache) Keys() []string {
	var keys []string
	c.entries.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func (c *Cache) loadBacking(ctx context.Context, key string) (Entry, bool) {
	if c.backing == nil {
		return Entry{}, false
	}
	e, ok, err := c.backing.Load(ctx, key)
	if err != nil {
		c.log.Warn("cache backing load failed", logger.String("key", key), logger.Error(err))
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	e.Key = key
	return e, true
}

func (c *Cache) saveBacking(ctx context.Context, e Entry) {
	if c.backing == nil {
		return
	}
	if err := c.backing.Save(ctx, e); err != nil {
		c.log.Warn("cache backing save failed", logger.String("key", e.Key), logger.Error(err))
	}
}
