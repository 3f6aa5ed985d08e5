package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// CommentCacheManager 评论列表缓存, 写评论时按视频整体失效
type CommentCacheManager struct {
	client redis.Cmdable
	// 缓存过期时间配置
	topLevelExpire time.Duration // 顶层评论列表
	repliesExpire  time.Duration // 回复列表
}

// NewCommentCacheManager 创建评论缓存管理器
func NewCommentCacheManager(client redis.Cmdable) *CommentCacheManager {
	return &CommentCacheManager{
		client:         client,
		topLevelExpire: 10 * time.Minute,
		repliesExpire:  30 * time.Minute,
	}
}

// 缓存键名常量
const (
	// 视频顶层评论列表缓存键
	VideoCommentsKey = "video:comments:%s:top"
	// 评论回复列表缓存键, 挂在视频前缀下以便统一失效
	CommentRepliesKey = "video:comments:%s:replies:%s"
	// 视频下所有评论缓存的匹配模式
	videoCommentsPattern = "video:comments:%s:*"
)

// CacheTopLevel 缓存顶层评论列表
func (ccm *CommentCacheManager) CacheTopLevel(ctx context.Context, videoID string, comments interface{}) error {
	return ccm.set(ctx, fmt.Sprintf(VideoCommentsKey, videoID), comments, ccm.topLevelExpire)
}

// GetCachedTopLevel 读取顶层评论列表, 未命中时返回 false
func (ccm *CommentCacheManager) GetCachedTopLevel(ctx context.Context, videoID string, out interface{}) (bool, error) {
	return ccm.get(ctx, fmt.Sprintf(VideoCommentsKey, videoID), out)
}

// CacheReplies 缓存回复列表
func (ccm *CommentCacheManager) CacheReplies(ctx context.Context, videoID, commentID string, replies interface{}) error {
	return ccm.set(ctx, fmt.Sprintf(CommentRepliesKey, videoID, commentID), replies, ccm.repliesExpire)
}

// GetCachedReplies 读取回复列表
func (ccm *CommentCacheManager) GetCachedReplies(ctx context.Context, videoID, commentID string, out interface{}) (bool, error) {
	return ccm.get(ctx, fmt.Sprintf(CommentRepliesKey, videoID, commentID), out)
}

func (ccm *CommentCacheManager) set(ctx context.Context, key string, value interface{}, expire time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal comment list")
	}
	return ccm.client.Set(ctx, key, data, expire).Err()
}

func (ccm *CommentCacheManager) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := ccm.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // 缓存未命中
		}
		return false, errors.Wrap(err, "failed to get cached comment list")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrap(err, "failed to unmarshal comment list")
	}
	return true, nil
}

// InvalidateVideoComments 清除视频相关的评论缓存
func (ccm *CommentCacheManager) InvalidateVideoComments(ctx context.Context, videoID string) error {
	pattern := fmt.Sprintf(videoCommentsPattern, videoID)

	var cursor uint64
	for {
		keys, next, err := ccm.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return errors.Wrapf(err, "scan keys for pattern %s", pattern)
		}
		if len(keys) > 0 {
			if err := ccm.client.Del(ctx, keys...).Err(); err != nil {
				hlog.CtxWarnf(ctx, "Failed to delete keys %v: %v", keys, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
