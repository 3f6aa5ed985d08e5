package redis

import (
	"context"

	"VidHub.com/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// DirtySet 记录计数发生变化的视频/频道, 供对账任务优先检查
type DirtySet struct {
	client redis.Cmdable
}

func NewDirtySet(client redis.Cmdable) *DirtySet {
	return &DirtySet{client: client}
}

func (d *DirtySet) MarkVideo(ctx context.Context, videoID string) error {
	return d.client.SAdd(ctx, constants.DirtyVideoSetKey, videoID).Err()
}

func (d *DirtySet) MarkChannel(ctx context.Context, channelID string) error {
	return d.client.SAdd(ctx, constants.DirtyChannelSetKey, channelID).Err()
}

// PopVideos 取出最多 n 个待检查视频
func (d *DirtySet) PopVideos(ctx context.Context, n int64) ([]string, error) {
	return d.pop(ctx, constants.DirtyVideoSetKey, n)
}

// PopChannels 取出最多 n 个待检查频道
func (d *DirtySet) PopChannels(ctx context.Context, n int64) ([]string, error) {
	return d.pop(ctx, constants.DirtyChannelSetKey, n)
}

func (d *DirtySet) pop(ctx context.Context, key string, n int64) ([]string, error) {
	ids, err := d.client.SPopN(ctx, key, n).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return ids, err
}
