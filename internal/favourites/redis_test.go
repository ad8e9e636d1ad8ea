package favourites

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreIgnoresOwnDevice(t *testing.T) {
	s := NewRedisStore(nil, "")
	assert.Equal(t, DefaultPrefix+"changes", s.channel())

	_, ok := s.external(`{"key":"FavouriteCounties","device":"` + s.Device() + `"}`)
	assert.False(t, ok)

	key, ok := s.external(`{"key":"FavouriteCounties","device":"other"}`)
	assert.True(t, ok)
	assert.Equal(t, Key, key)

	_, ok = s.external(`garbage`)
	assert.False(t, ok)
	_, ok = s.external(`{"device":"other"}`)
	assert.False(t, ok)
}

// 需要可用的 Redis：REDIS_TEST_ADDR=127.0.0.1:6379
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	prefix := "counties:test:" + time.Now().Format("150405.000000") + ":"
	defer rdb.Del(context.Background(), prefix+Key)

	a := NewRedisStore(rdb, prefix)
	b := NewRedisStore(rdb, prefix)

	v, err := a.Strings(ctx, Key)
	require.NoError(t, err)
	assert.Nil(t, v)

	seenA := make(chan string, 1)
	seenB := make(chan string, 1)
	require.NoError(t, a.WatchExternal(ctx, func(k string) { seenA <- k }))
	require.NoError(t, b.WatchExternal(ctx, func(k string) { seenB <- k }))

	require.NoError(t, a.SetStrings(ctx, Key, []string{"Devon", "Kent"}))
	got, err := b.Strings(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, []string{"Devon", "Kent"}, got)

	select {
	case k := <-seenB:
		assert.Equal(t, Key, k)
	case <-time.After(2 * time.Second):
		t.Fatal("no external change on other device")
	}
	select {
	case <-seenA:
		t.Fatal("own write reported as external")
	case <-time.After(100 * time.Millisecond):
	}
	assert.NoError(t, a.Synchronize(ctx))
}
