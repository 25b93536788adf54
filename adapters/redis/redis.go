// Package redis implements the session cache on a shared Redis so multiple
// exchange instances see the same verified sessions.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legalaipro/lexauth"
)

const defaultPrefix = "lexauth:session:"

// Cache implements lexauth.Cache on a Redis client. Entries expire via
// Redis TTL; eviction is left to Redis.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ lexauth.Cache = (*Cache)(nil)

type Config struct {
	Prefix string
	TTL    time.Duration
}

func New(client *redis.Client, config Config) *Cache {
	if config.Prefix == "" {
		config.Prefix = defaultPrefix
	}
	if config.TTL == 0 {
		config.TTL = 5 * time.Minute
	}
	return &Cache{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

func (c *Cache) Get(tokenHash string) (*lexauth.Session, error) {
	ctx := context.Background()

	data, err := c.client.Get(ctx, c.prefix+tokenHash).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, lexauth.ErrCacheNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	session := &lexauth.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		// A corrupt entry behaves like a miss; the verifier falls back
		// to storage and overwrites it.
		_ = c.client.Del(ctx, c.prefix+tokenHash).Err()
		return nil, lexauth.ErrCacheNotFound
	}
	session.TokenHash = tokenHash
	return session, nil
}

func (c *Cache) Set(tokenHash string, session *lexauth.Session) error {
	ctx := context.Background()

	data, err := json.Marshal(cacheEntry(session))
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	ttl := c.ttl
	if remaining := time.Until(session.ExpiresAt); remaining > 0 && remaining < ttl {
		ttl = remaining
	}

	return c.client.Set(ctx, c.prefix+tokenHash, data, ttl).Err()
}

func (c *Cache) Delete(tokenHash string) error {
	return c.client.Del(context.Background(), c.prefix+tokenHash).Err()
}

func (c *Cache) Clear() error {
	ctx := context.Background()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// cacheEntry round-trips the fields json.Marshal would otherwise drop
// (TokenHash is json:"-" on the public model).
func cacheEntry(s *lexauth.Session) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"userId":    s.UserID,
		"ipAddress": s.IPAddress,
		"userAgent": s.UserAgent,
		"expiresAt": s.ExpiresAt,
		"createdAt": s.CreatedAt,
		"updatedAt": s.UpdatedAt,
	}
}
