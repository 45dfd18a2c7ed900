package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/outreach/pkg/logger"
)

// Cache remembers the newest send timestamp per (recipient, template).
type Cache interface {
	Get(ctx context.Context, key string) (time.Time, bool, error)
	Set(ctx context.Context, key string, at time.Time) error
}

// Cached fronts a durable ledger with a read cache for dedup checks.
//
// Only positive answers are served from the cache. A miss, or a cached
// timestamp older than the requested window, always falls through to the
// durable ledger, so a stale or evicted cache can cause an extra query but
// never a duplicate send. Cache errors are logged and ignored.
type Cached struct {
	next  Ledger
	cache Cache
	log   *slog.Logger
}

// CachedOption configures Cached.
type CachedOption func(*Cached)

// WithCacheLogger sets the logger for cache failures.
func WithCacheLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCached(next Ledger, cache Cache, opts ...CachedOption) *Cached {
	c := &Cached{next: next, cache: cache, log: logger.NewNope()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Append(ctx context.Context, e Entry) (Entry, error) {
	stored, err := c.next.Append(ctx, e)
	if err != nil {
		return Entry{}, err
	}
	c.remember(ctx, key(stored.Recipient, stored.Template), stored.SentAt)
	return stored, nil
}

func (c *Cached) WasSent(ctx context.Context, recipient, template string) (bool, error) {
	_, ok, err := c.LastSent(ctx, recipient, template)
	return ok, err
}

func (c *Cached) WasSentSince(ctx context.Context, recipient, template string, since time.Time) (bool, error) {
	k := key(recipient, template)
	if at, ok := c.lookup(ctx, k); ok && !at.Before(since) {
		return true, nil
	}

	last, ok, err := c.next.LastSent(ctx, recipient, template)
	if err != nil || !ok {
		return false, err
	}
	c.remember(ctx, k, last)
	return !last.Before(since), nil
}

// LastSent may return a cached timestamp older than the newest entry when
// another process appended without updating a shared cache.
func (c *Cached) LastSent(ctx context.Context, recipient, template string) (time.Time, bool, error) {
	k := key(recipient, template)
	if at, ok := c.lookup(ctx, k); ok {
		return at, true, nil
	}

	last, ok, err := c.next.LastSent(ctx, recipient, template)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	c.remember(ctx, k, last)
	return last, true, nil
}

func (c *Cached) List(ctx context.Context, limit int) ([]Entry, error) {
	return c.next.List(ctx, limit)
}

func (c *Cached) lookup(ctx context.Context, k string) (time.Time, bool) {
	at, ok, err := c.cache.Get(ctx, k)
	if err != nil {
		c.log.WarnContext(ctx, "ledger cache read failed", slog.String("key", k), slog.Any("error", err))
		return time.Time{}, false
	}
	return at, ok
}

func (c *Cached) remember(ctx context.Context, k string, at time.Time) {
	if err := c.cache.Set(ctx, k, at); err != nil {
		c.log.WarnContext(ctx, "ledger cache write failed", slog.String("key", k), slog.Any("error", err))
	}
}

// MemoryCache is a process-local Cache with a fixed TTL.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	ttl     time.Duration
	nowFunc func() time.Time
}

type memoryItem struct {
	at      time.Time
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), ttl: ttl, nowFunc: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, k string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[k]
	if !ok {
		return time.Time{}, false, nil
	}
	if m.ttl > 0 && m.nowFunc().After(it.expires) {
		delete(m.items, k)
		return time.Time{}, false, nil
	}
	return it.at, true, nil
}

func (m *MemoryCache) Set(_ context.Context, k string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.items[k]; ok && cur.at.After(at) {
		at = cur.at
	}
	m.items[k] = memoryItem{at: at, expires: m.nowFunc().Add(m.ttl)}
	return nil
}

// RedisCache stores timestamps in Redis so every process sees sends made by
// the others.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "outreach:ledger:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, k string) (time.Time, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+k).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// Set overwrites the key. A racing writer may store an older timestamp; that
// only makes WasSentSince fall through to the durable ledger.
func (r *RedisCache) Set(ctx context.Context, k string, at time.Time) error {
	return r.client.Set(ctx, r.prefix+k, at.UTC().Format(time.RFC3339Nano), r.ttl).Err()
}
