package company

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoises classifications by key
type Cache interface {
	Get(ctx context.Context, key string) (Classification, bool, error)
	Set(ctx context.Context, key string, c Classification) error
}

type memoryEntry struct {
	value     Classification
	expiresAt time.Time
}

// MemoryCache is a process-local Cache
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache. A zero ttl never expires entries.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a cached classification
func (m *MemoryCache) Get(_ context.Context, key string) (Classification, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return Classification{}, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return Classification{}, false, nil
	}
	return e.value, true, nil
}

// Set stores a classification
func (m *MemoryCache) Set(_ context.Context, key string, c Classification) error {
	e := memoryEntry{value: c}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached entries
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

const redisKeyPrefix = "jobscout:company:"

// RedisCache shares classifications between processes through Redis
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps an existing client
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses redisURL and verifies connectivity
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Get returns a cached classification
func (r *RedisCache) Get(ctx context.Context, key string) (Classification, bool, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Classification{}, false, nil
	}
	if err != nil {
		return Classification{}, false, fmt.Errorf("redis get: %w", err)
	}

	var c Classification
	if err := json.Unmarshal(data, &c); err != nil {
		return Classification{}, false, fmt.Errorf("decode cached classification: %w", err)
	}
	return c, true, nil
}

// Set stores a classification with the cache TTL
func (r *RedisCache) Set(ctx context.Context, key string, c Classification) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode classification: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
