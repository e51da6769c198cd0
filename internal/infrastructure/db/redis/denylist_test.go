package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestTokenDenylist_RevokeAndCheck(t *testing.T) {
	s, client := newTestClient(t)
	d := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "t1", time.Hour))

	revoked, err = d.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, s.TTL("denylist:t1"))

	s.FastForward(time.Hour + time.Second)
	revoked, err = d.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry should expire with the token")
}

func TestTokenDenylist_ExpiredTokenNotStored(t *testing.T) {
	s, client := newTestClient(t)
	d := NewTokenDenylist(client)

	require.NoError(t, d.Revoke(context.Background(), "t2", 0))
	assert.False(t, s.Exists("denylist:t2"))
}

func TestTokenDenylist_RedisDown(t *testing.T) {
	s, client := newTestClient(t)
	d := NewTokenDenylist(client)
	s.Close()

	_, err := d.IsRevoked(context.Background(), "t1")
	assert.Error(t, err)
}
