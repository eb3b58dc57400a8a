// Package cache is a small redis-backed JSON cache used to serve hot
// analytics reports. A failed or absent cache degrades to a miss; it is
// never fatal.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Cache struct {
	client *redis.Client
	log    *logrus.Entry
}

// New connects to redis at redisURL. An empty URL or a failed connection
// yields a disabled cache; all operations then report misses.
func New(logger *logrus.Logger, redisURL string) *Cache {
	log := logger.WithField("component", "cache")

	if redisURL == "" {
		log.Info("Redis URL not configured, cache disabled")
		return &Cache{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Warn("Invalid redis URL, cache disabled")
		return &Cache{log: log}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis connection failed, cache disabled")
		return &Cache{log: log}
	}

	log.Info("Redis connected")
	return &Cache{client: client, log: log}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get unmarshals the cached value for key into dest. Returns false on a miss
// or any failure.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("Cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.WithError(err).Warn("Cache entry unmarshal failed")
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).Warn("Cache value marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Cache set failed")
	}
}

func (c *Cache) Del(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.WithError(err).Warn("Cache delete failed")
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
