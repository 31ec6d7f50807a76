package redis

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-crm-connector/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New connects to the configured Redis. Returns nil when no URL is set, which
// selects the in-memory stores.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("[redis New] parse redis URL: %w", err)
	}
	opts.DialTimeout = cfg.GetRedisDialTimeout()
	opts.ReadTimeout = cfg.GetRedisReadTimeout()
	opts.WriteTimeout = cfg.GetRedisWriteTimeout()

	return connect(ctx, redis.NewClient(opts))
}

func connect(ctx context.Context, client *redis.Client) (*Client, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redis New] ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
