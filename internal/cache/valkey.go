package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Connect opens the Valkey connection and checks it with a ping.
func Connect(ctx context.Context, addr string, db int, log *zap.Logger) (*Client, error) {
	c := New(addr, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	log.Info("connected to valkey", zap.String("addr", addr), zap.Int("db", db))
	return c, nil
}
