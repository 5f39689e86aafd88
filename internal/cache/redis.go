// Package cache provides the shared Redis connection.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis client. Zero fields keep the defaults.
type Options struct {
	PoolSize    int
	DialTimeout time.Duration
}

const (
	defaultPoolSize    = 10
	defaultDialTimeout = 5 * time.Second
)

// Cache wraps the process-wide Redis client.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, applies opts and pings the server once.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = defaultPoolSize
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	opt.DialTimeout = defaultDialTimeout
	if opts.DialTimeout > 0 {
		opt.DialTimeout = opts.DialTimeout
	}
	opt.MinIdleConns = 1
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, opt.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping reports whether Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for stores built on it.
func (c *Cache) Client() *redis.Client {
	return c.client
}
