package redis

import (
	"context"
	"fmt"
	"time"

	"VidHub.com/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// ViewLimiter 同一观众同一视频在会话窗口内只计一次播放
type ViewLimiter struct {
	client redis.Cmdable
	window time.Duration
}

func NewViewLimiter(client redis.Cmdable, window time.Duration) *ViewLimiter {
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &ViewLimiter{client: client, window: window}
}

// Allow 返回本次播放是否应计数, viewerKey 为用户 ID 或匿名会话标识
func (l *ViewLimiter) Allow(ctx context.Context, viewerKey, videoID string) (bool, error) {
	key := fmt.Sprintf(constants.ViewSessionKeyTemplate, viewerKey, videoID)
	return l.client.SetNX(ctx, key, time.Now().Unix(), l.window).Result()
}

func (l *ViewLimiter) Window() time.Duration {
	return l.window
}
