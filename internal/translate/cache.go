package translate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache is an in-process phrase cache. It can be preloaded with a
// known-good phrase table so frequent labels never hit the service.
type MemoryCache struct {
	mu      sync.RWMutex
	phrases map[string]string
}

func NewMemoryCache(seed map[string]string) *MemoryCache {
	phrases := make(map[string]string, len(seed))
	for k, v := range seed {
		phrases[k] = v
	}
	return &MemoryCache{phrases: phrases}
}

func (c *MemoryCache) Get(_ context.Context, phrase string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	translation, ok := c.phrases[phrase]
	return translation, ok
}

func (c *MemoryCache) Set(_ context.Context, phrase, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phrases[phrase] = translation
}

// RedisCache stores phrase translations in redis so they survive restarts
// and are shared between the crawler and the server. Redis being down is a
// cache miss, never a translation failure.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "translate:ko:en:",
		ttl:    30 * 24 * time.Hour,
		logger: slog.Default().With("component", "translate_cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, phrase string) (string, bool) {
	translation, err := c.client.Get(ctx, c.prefix+phrase).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "error", err)
		}
		return "", false
	}
	return translation, true
}

func (c *RedisCache) Set(ctx context.Context, phrase, translation string) {
	if err := c.client.Set(ctx, c.prefix+phrase, translation, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}
