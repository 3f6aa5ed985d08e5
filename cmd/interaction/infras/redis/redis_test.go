package redis

import (
	"context"
	"testing"
	"time"

	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCounterCache(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	cache := NewCounterCache(client, time.Hour)

	_, found, err := cache.GetVoteCounts(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetVoteCounts(ctx, "v1", engagement.Counts{LikeCount: 3, DislikeCount: -1}))
	counts, found, err := cache.GetVoteCounts(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, engagement.Counts{LikeCount: 3, DislikeCount: 0}, counts)
	assert.Equal(t, time.Hour, mr.TTL("count:video:v1"))

	require.NoError(t, cache.SetVideoCounters(ctx, "v1", map[engagement.Counter]int64{engagement.CounterComments: 7}))
	values, _, err := cache.GetVideoCounters(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), values[engagement.CounterComments])
	assert.Equal(t, int64(3), values[engagement.CounterLikes])

	require.NoError(t, cache.InvalidateVideo(ctx, "v1"))
	_, found, err = cache.GetVideoCounters(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestViewLimiter(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	limiter := NewViewLimiter(client, 30*time.Minute)

	ok, err := limiter.Allow(ctx, "user-a", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "user-a", "v1")
	require.NoError(t, err)
	assert.False(t, ok, "同一会话窗口内不重复计数")

	ok, err = limiter.Allow(ctx, "user-b", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * time.Minute)
	ok, err = limiter.Allow(ctx, "user-a", "v1")
	require.NoError(t, err)
	assert.True(t, ok, "窗口过期后重新计数")
}

func TestDirtySet(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	dirty := NewDirtySet(client)

	ids, err := dirty.PopVideos(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, dirty.MarkVideo(ctx, "v1"))
	require.NoError(t, dirty.MarkVideo(ctx, "v1"))
	require.NoError(t, dirty.MarkVideo(ctx, "v2"))
	require.NoError(t, dirty.MarkChannel(ctx, "c1"))

	ids, err = dirty.PopVideos(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, ids)

	ids, err = dirty.PopChannels(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)
}

func TestVoteLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("加锁与释放", func(t *testing.T) {
		_, client := newTestClient(t)
		locker := NewVoteLocker(client, time.Second)

		unlock, err := locker.Lock(ctx, "user-a", "v1")
		require.NoError(t, err)

		// 不同视频互不影响
		unlockOther, err := locker.Lock(ctx, "user-a", "v2")
		require.NoError(t, err)
		unlockOther()

		unlock()
		unlock, err = locker.Lock(ctx, "user-a", "v1")
		require.NoError(t, err)
		unlock()
	})

	t.Run("锁被占用时返回暂时错误", func(t *testing.T) {
		_, client := newTestClient(t)
		holder := NewVoteLocker(client, 10*time.Second)
		unlock, err := holder.Lock(ctx, "user-a", "v1")
		require.NoError(t, err)
		defer unlock()

		_, err = NewVoteLocker(client, time.Second).Lock(ctx, "user-a", "v1")
		require.Error(t, err)
		assert.True(t, errno.Is(err, errno.TransientStoreErr))
	})

	t.Run("Redis 不可用时降级为无锁", func(t *testing.T) {
		mr, client := newTestClient(t)
		locker := NewVoteLocker(client, time.Second)
		mr.Close()

		unlock, err := locker.Lock(ctx, "user-a", "v1")
		require.NoError(t, err)
		require.NotNil(t, unlock)
		unlock()
	})
}
