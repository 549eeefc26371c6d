package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

func newTestCache(t *testing.T, ttl time.Duration) (*MarketCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = r.Close() })
	return New(r, ttl), mr
}

func TestMarketCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	_, hit, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMarketCache_OlderSnapshotDoesNotOverwrite(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	resolved := events.MarketSnapshot{MarketID: "m1", Resolved: true, Version: 3}
	ok, err := c.SetIfNewer(ctx, resolved)
	require.NoError(t, err)
	assert.True(t, ok)

	// projector atrasado entregando o estado anterior à resolução
	ok, err = c.SetIfNewer(ctx, events.MarketSnapshot{MarketID: "m1", Resolved: false, Version: 2})
	require.NoError(t, err)
	assert.False(t, ok)

	got, hit, err := c.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.True(t, got.Resolved)
	assert.Equal(t, uint64(3), got.Version)

	// mesma versão é reentrega e pode regravar
	ok, err = c.SetIfNewer(ctx, resolved)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Set(ctx, events.MarketSnapshot{MarketID: "m1", Resolved: true, Closed: true, Version: 4}))
	got, _, err = c.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Closed)
	assert.Equal(t, time.Minute, mr.TTL(Key("m1")))
}

func TestMarketCache_NoTTL(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, c.Set(context.Background(), events.MarketSnapshot{MarketID: "m2", Version: 1}))
	assert.True(t, mr.Exists(Key("m2")))
	assert.Equal(t, time.Duration(0), mr.TTL(Key("m2")))
}
