package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Valkey/Redis connection used for shared counters.
type Client struct {
	rdb redis.UniversalClient
}

func New(addr string, db int) *Client {
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})}
}

// Wrap uses an existing client (tests, clusters).
func Wrap(rdb redis.UniversalClient) *Client { return &Client{rdb: rdb} }

// IncrWindow increments key and returns the new count. The key expires ttl
// after its first increment, so each key counts one fixed window.
func (c *Client) IncrWindow(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
