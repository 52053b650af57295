package redisx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDeduper_MarkThenSeen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewDeduper(rdb)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "123")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Mark(ctx, "123"))
	require.NoError(t, d.Mark(ctx, "123"))

	seen, err = d.Seen(ctx, "123")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.True(t, mr.Exists("dedup:webhook:123"))
	assert.Equal(t, TTLDedup, mr.TTL("dedup:webhook:123"))
}

func TestDeduper_Expires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	d := NewDeduper(rdb)
	ctx := context.Background()

	require.NoError(t, d.Mark(ctx, "9"))
	mr.FastForward(TTLDedup + 1)

	seen, err := d.Seen(ctx, "9")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDeduper_ServerDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	_, err := NewDeduper(rdb).Seen(context.Background(), "1")
	assert.Error(t, err)
}
