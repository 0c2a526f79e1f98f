package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultFrameTTL keeps a match's frames around for a day after the last
// write.
const DefaultFrameTTL = 24 * time.Hour

// Client wraps the Redis client for the frame mirror.
type Client struct {
	rdb     *redis.Client
	ttl     time.Duration
	history int64
}

// NewClient creates a Redis client from a connection URL. history is the
// number of frames kept per match; 0 keeps only the latest one.
func NewClient(ctx context.Context, redisURL string, history int) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewClientFromPool(rdb, history), nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client, history int) *Client {
	return &Client{rdb: rdb, ttl: DefaultFrameTTL, history: int64(history)}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
