package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/quill/app/generate"
)

// Cache wraps a Redis client for generated article caching
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection
func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &Cache{client: client, ttl: ttl}, nil
}

// GenerateArticleKey builds a stable key from the provider kind and the
// case-folded query
func (c *Cache) GenerateArticleKey(kind, query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("generated:%s:%x", kind, hash[:8])
}

type cachedArticle struct {
	Article  generate.Article `json:"article"`
	CachedAt int64            `json:"cached_at"`
}

// GetArticle returns a cached article. A miss is (nil, false, nil).
func (c *Cache) GetArticle(ctx context.Context, kind, query string) (*generate.Article, bool, error) {
	key := c.GenerateArticleKey(kind, query)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var entry cachedArticle
	if err := json.Unmarshal(data, &entry); err != nil {
		// Unreadable entries are dropped and treated as a miss
		c.client.Del(ctx, key)
		return nil, false, nil
	}

	return &entry.Article, true, nil
}

// SetArticle stores an article for the configured TTL
func (c *Cache) SetArticle(ctx context.Context, kind, query string, article *generate.Article) error {
	key := c.GenerateArticleKey(kind, query)

	data, err := json.Marshal(cachedArticle{Article: *article, CachedAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Health returns cache health information
func (c *Cache) Health(ctx context.Context) map[string]any {
	health := map[string]any{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}

	return health
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
