package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/data-tales/data-sources/internal/cache"
)

var _ cache.Backing = (*Store)(nil)

// Save stores a cache entry with the store TTL
func (s *Store) Save(ctx context.Context, e cache.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := s.client.Set(ctx, CapabilitiesKey(e.Key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// Load retrieves a cache entry. A missing key is not an error.
func (s *Store) Load(ctx context.Context, key string) (cache.Entry, bool, error) {
	data, err := s.client.Get(ctx, CapabilitiesKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{}, false, fmt.Errorf("failed to get entry: %w", err)
	}

	var e cache.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return cache.Entry{}, false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return e, true, nil
}

// LoadMany retrieves the entries for keys in one round trip, skipping
// missing and undecodable ones.
func (s *Store) LoadMany(ctx context.Context, keys []string) ([]cache.Entry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = CapabilitiesKey(k)
	}

	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	entries := make([]cache.Entry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e cache.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		e.Key = keys[i]
		entries = append(entries, e)
	}
	return entries, nil
}
