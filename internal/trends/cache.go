package trends

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	pkgredis "github.com/stockwise-ai/stockwise-backend/pkg/redis"
)

// Cache stores expanded trend entries keyed by season. Writes are
// idempotent: concurrent misses for the same season recompute the same
// value and overwrite each other harmlessly.
type Cache interface {
	Get(ctx context.Context, season string) ([]Entry, bool)
	Set(ctx context.Context, season string, entries []Entry)
}

// RedisCache keeps trend entries in redis with a TTL.
type RedisCache struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisCache builds a redis-backed trend cache.
func NewRedisCache(client *pkgredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, season string) ([]Entry, bool) {
	raw, err := c.client.Get(ctx, c.client.CacheKey("trends", season))
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RedisCache) Set(ctx context.Context, season string, entries []Entry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	// Best effort: a failed write only costs a recompute on the next miss.
	_ = c.client.Set(ctx, c.client.CacheKey("trends", season), string(raw), c.ttl)
}

// MemoryCache is an in-process TTL cache used in tests and sqlite dev
// mode where no redis is available.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	values    []Entry
	expiresAt time.Time
}

// NewMemoryCache builds an in-process trend cache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, season string) ([]Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[season]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.values, true
}

func (c *MemoryCache) Set(_ context.Context, season string, entries []Entry) {
	c.mu.Lock()
	c.entries[season] = memoryEntry{values: entries, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
