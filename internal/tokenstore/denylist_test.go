package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T, ttl time.Duration) (*Denylist, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewDenylist(rdb, ttl), mr
}

func TestDenyAndCheck(t *testing.T) {
	d, _ := newTestDenylist(t, time.Hour)
	ctx := context.Background()

	denied, err := d.IsDenied(ctx, "some-jti")
	require.NoError(t, err)
	assert.False(t, denied)

	require.NoError(t, d.Deny(ctx, "some-jti"))

	denied, err = d.IsDenied(ctx, "some-jti")
	require.NoError(t, err)
	assert.True(t, denied)

	denied, err = d.IsDenied(ctx, "another-jti")
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestDenyEntryExpires(t *testing.T) {
	d, mr := newTestDenylist(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, d.Deny(ctx, "short-lived"))
	mr.FastForward(61 * time.Second)

	denied, err := d.IsDenied(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, denied)
}
