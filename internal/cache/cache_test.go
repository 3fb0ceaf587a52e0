package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnect_Unreachable(t *testing.T) {
	// grab a free port and release it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := Connect(context.Background(), addr, 0, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNew_DefaultAddr(t *testing.T) {
	c := New("", 0)
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}

func TestIncrWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	c := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()
	ctx := context.Background()

	n, err := c.IncrWindow(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 30*time.Second, mr.TTL("k"))

	// later hits keep the original expiry
	mr.FastForward(10 * time.Second)
	n, err = c.IncrWindow(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 20*time.Second, mr.TTL("k"))

	require.NoError(t, c.Ping(ctx))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), mr.Addr(), 0, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	n, err := c.IncrWindow(context.Background(), "x", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
