package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis with the one connection pool the process
// shares between the feed cache and the redis-backed storages.
type Client struct {
	*redis.Client
}

// NewClient builds a client from a redis:// URL
// (redis://[:password@]host:port[/db]).
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// Ping fails fast at startup when the cache store is unreachable.
// Past startup, callers treat per-operation errors as "cache
// unavailable" and degrade instead of crashing.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
