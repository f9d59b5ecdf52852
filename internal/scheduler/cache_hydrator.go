package scheduler

import (
	"context"

	"github.com/data-tales/data-sources/internal/cache"
	"github.com/data-tales/data-sources/internal/logger"
)

// EntryLoader is satisfied by *redisstore.Store.
type EntryLoader interface {
	LoadMany(ctx context.Context, keys []string) ([]cache.Entry, error)
}

// CacheHydrator copies shared-tier entries into memory on startup
type CacheHydrator struct {
	store  EntryLoader
	cache  *cache.Cache
	keys   []string
	logger logger.Logger
}

// NewCacheHydrator creates a hydrator for the given cache keys
func NewCacheHydrator(
	store EntryLoader,
	c *cache.Cache,
	keys []string,
	log logger.Logger,
) *CacheHydrator {
	return &CacheHydrator{
		store:  store,
		cache:  c,
		keys:   keys,
		logger: log,
	}
}

// Hydrate loads the known keys from the store and puts them in memory
func (ch *CacheHydrator) Hydrate(ctx context.Context) (int, error) {
	ch.logger.Info("hydrating capabilities cache from redis",
		logger.Int("keys", len(ch.keys)))

	entries, err := ch.store.LoadMany(ctx, ch.keys)
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		ch.cache.Put(e)
	}

	ch.logger.Info("hydrated capabilities cache",
		logger.Int("count", len(entries)))
	return len(entries), nil
}
