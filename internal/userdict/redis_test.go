package userdict

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoSplit/internal/analysis"
)

// newTestRedis connects to GOSPLIT_TEST_REDIS_ADDR or skips the test.
func newTestRedis(t *testing.T) *RedisDict {
	t.Helper()
	addr := os.Getenv("GOSPLIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GOSPLIT_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	prefix := "gosplit_test:" + t.Name()
	t.Cleanup(func() {
		client.Del(context.Background(), prefix+":A", prefix+":B")
	})
	return NewRedisDict(client, prefix)
}

func TestRedisDict_RoundTrip(t *testing.T) {
	d := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "東京都", analysis.SplitA, "東京", "都"))
	require.NoError(t, d.Add(ctx, "選挙管理委員会", analysis.SplitB, "選挙", "管理", "委員会"))

	parts, ok, err := d.Lookup(ctx, "東京都", analysis.SplitA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"東京", "都"}, parts)

	_, ok, err = d.Lookup(ctx, "東京都", analysis.SplitB)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := d.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"選挙", "管理", "委員会"}, all["選挙管理委員会"].B)

	require.NoError(t, d.Remove(ctx, "東京都"))
	_, ok, err = d.Lookup(ctx, "東京都", analysis.SplitA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDict_RejectsMalformed(t *testing.T) {
	// Validation happens before any network call.
	d := NewRedisDict(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	err := d.Add(context.Background(), "東京都", analysis.SplitA, "京都")
	assert.ErrorIs(t, err, ErrMalformedEntry)

	parts, ok, err := d.Lookup(context.Background(), "東京都", analysis.SplitC)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, parts)
}
