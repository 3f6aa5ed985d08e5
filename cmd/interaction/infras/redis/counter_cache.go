package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/engagement"
	"github.com/redis/go-redis/v9"
)

// CounterCache 视频/频道计数缓存, 只写入事务提交后的确认值
// 计数缓存 Key: count:video:{video_id}, hash 字段为计数列名
type CounterCache struct {
	client     redis.Cmdable
	defaultTTL time.Duration
}

func NewCounterCache(client redis.Cmdable, ttl time.Duration) *CounterCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CounterCache{client: client, defaultTTL: ttl}
}

func videoCountKey(videoID string) string {
	return fmt.Sprintf(constants.VideoCountKeyTemplate, videoID)
}

func profileCountKey(profileID string) string {
	return fmt.Sprintf(constants.ProfileCountKeyTemplate, profileID)
}

// SetVoteCounts 写入点赞/点踩确认值
func (c *CounterCache) SetVoteCounts(ctx context.Context, videoID string, counts engagement.Counts) error {
	return c.SetVideoCounters(ctx, videoID, map[engagement.Counter]int64{
		engagement.CounterLikes:    counts.LikeCount,
		engagement.CounterDislikes: counts.DislikeCount,
	})
}

// SetVideoCounters 批量写入视频计数
func (c *CounterCache) SetVideoCounters(ctx context.Context, videoID string, values map[engagement.Counter]int64) error {
	return c.setHash(ctx, videoCountKey(videoID), values)
}

// SetProfileCounters 批量写入频道计数
func (c *CounterCache) SetProfileCounters(ctx context.Context, profileID string, values map[engagement.Counter]int64) error {
	return c.setHash(ctx, profileCountKey(profileID), values)
}

func (c *CounterCache) setHash(ctx context.Context, key string, values map[engagement.Counter]int64) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[string(k)] = engagement.Clamp(v)
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.defaultTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetVideoCounters 读取视频计数, 缓存未命中时 found 为 false
func (c *CounterCache) GetVideoCounters(ctx context.Context, videoID string) (map[engagement.Counter]int64, bool, error) {
	return c.getHash(ctx, videoCountKey(videoID))
}

// GetProfileCounters 读取频道计数
func (c *CounterCache) GetProfileCounters(ctx context.Context, profileID string) (map[engagement.Counter]int64, bool, error) {
	return c.getHash(ctx, profileCountKey(profileID))
}

func (c *CounterCache) getHash(ctx context.Context, key string) (map[engagement.Counter]int64, bool, error) {
	raw, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, err
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	values := make(map[engagement.Counter]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid cached counter %s.%s: %w", key, k, err)
		}
		values[engagement.Counter(k)] = engagement.Clamp(n)
	}
	return values, true, nil
}

// GetVoteCounts 读取点赞/点踩缓存
func (c *CounterCache) GetVoteCounts(ctx context.Context, videoID string) (engagement.Counts, bool, error) {
	values, found, err := c.GetVideoCounters(ctx, videoID)
	if err != nil || !found {
		return engagement.Counts{}, found, err
	}
	likes, ok1 := values[engagement.CounterLikes]
	dislikes, ok2 := values[engagement.CounterDislikes]
	if !ok1 || !ok2 {
		return engagement.Counts{}, false, nil
	}
	return engagement.Counts{LikeCount: likes, DislikeCount: dislikes}, true, nil
}

// InvalidateVideo 删除视频计数缓存
func (c *CounterCache) InvalidateVideo(ctx context.Context, videoID string) error {
	return c.client.Del(ctx, videoCountKey(videoID)).Err()
}
