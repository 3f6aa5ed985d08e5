package service

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/cmd/video/dal/db"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// CommentCache 评论列表缓存, 可为空
type CommentCache interface {
	CacheTopLevel(ctx context.Context, videoID string, comments interface{}) error
	GetCachedTopLevel(ctx context.Context, videoID string, out interface{}) (bool, error)
	CacheReplies(ctx context.Context, videoID, commentID string, replies interface{}) error
	GetCachedReplies(ctx context.Context, videoID, commentID string, out interface{}) (bool, error)
}

// CounterCache 计数缓存, 只保存事务提交后的确认值, 可为空
type CounterCache interface {
	GetVideoCounters(ctx context.Context, videoID string) (map[engagement.Counter]int64, bool, error)
	GetProfileCounters(ctx context.Context, profileID string) (map[engagement.Counter]int64, bool, error)
}

type VideoService struct {
	store    *db.Store
	comments CommentCache
	counters CounterCache
	// 列表分页配置
	defaultLimit int
	maxLimit     int
}

func NewVideoService(store *db.Store, comments CommentCache, counters CounterCache, defaultLimit, maxLimit int) *VideoService {
	return &VideoService{
		store:        store,
		comments:     comments,
		counters:     counters,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// CreatorSummary 列表与评论中的作者信息
type CreatorSummary struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	AvatarUrl       string `json:"avatar_url"`
	SubscriberCount int64  `json:"subscriber_count"`
	Verified        bool   `json:"verified"`
}

// 作者资料缺失时只保留 ID, 徽章为 false
func newCreatorSummary(id string, p *model.Profile) CreatorSummary {
	if p == nil {
		return CreatorSummary{ID: id}
	}
	count := engagement.Clamp(p.SubscriberCount)
	return CreatorSummary{
		ID:              p.ID,
		Username:        p.Username,
		DisplayName:     p.Name(),
		AvatarUrl:       p.AvatarUrl,
		SubscriberCount: count,
		Verified:        engagement.IsVerified(&count),
	}
}

// VideoItem 视频投影, 计数在输出前截断为非负
type VideoItem struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	Status            string         `json:"status"`
	VideoUrl          string         `json:"video_url"`
	ThumbnailUrl      string         `json:"thumbnail_url"`
	Duration          int64          `json:"duration"`
	FormattedDuration string         `json:"formatted_duration"`
	Tags              []string       `json:"tags"`
	ViewCount         int64          `json:"view_count"`
	FormattedViews    string         `json:"formatted_views"`
	LikeCount         int64          `json:"like_count"`
	DislikeCount      int64          `json:"dislike_count"`
	CommentCount      int64          `json:"comment_count"`
	CreatedAt         int64          `json:"created_at"`
	Creator           CreatorSummary `json:"creator"`
}

func newVideoItem(v *model.Video, creator *model.Profile) *VideoItem {
	views := engagement.Clamp(v.ViewCount)
	return &VideoItem{
		ID:                v.ID,
		Title:             v.Title,
		Description:       v.Description,
		Category:          v.Category,
		Status:            v.Status,
		VideoUrl:          v.VideoUrl,
		ThumbnailUrl:      v.ThumbnailUrl,
		Duration:          v.Duration,
		FormattedDuration: utils.FormatDuration(v.Duration),
		Tags:              v.TagList(),
		ViewCount:         views,
		FormattedViews:    utils.FormatViews(views),
		LikeCount:         engagement.Clamp(v.LikeCount),
		DislikeCount:      engagement.Clamp(v.DislikeCount),
		CommentCount:      engagement.Clamp(v.CommentCount),
		CreatedAt:         v.CreatedAt.Unix(),
		Creator:           newCreatorSummary(v.CreatorID, creator),
	}
}

// 缓存命中的字段覆盖行上的计数, 缓存不可用时保持行数据
func (s *VideoService) overlayVideoCounters(ctx context.Context, v *model.Video) {
	if s.counters == nil {
		return
	}
	values, found, err := s.counters.GetVideoCounters(ctx, v.ID)
	if err != nil {
		hlog.CtxWarnf(ctx, "read counter cache of video %s failed: %v", v.ID, err)
		return
	}
	if !found {
		return
	}
	for counter, n := range values {
		switch counter {
		case engagement.CounterViews:
			v.ViewCount = n
		case engagement.CounterLikes:
			v.LikeCount = n
		case engagement.CounterDislikes:
			v.DislikeCount = n
		case engagement.CounterComments:
			v.CommentCount = n
		}
	}
}

func (s *VideoService) overlayProfileCounters(ctx context.Context, p *model.Profile) {
	if s.counters == nil || p == nil {
		return
	}
	values, found, err := s.counters.GetProfileCounters(ctx, p.ID)
	if err != nil {
		hlog.CtxWarnf(ctx, "read counter cache of profile %s failed: %v", p.ID, err)
		return
	}
	if n, ok := values[engagement.CounterSubscribers]; found && ok {
		p.SubscriberCount = n
	}
}

// 分页参数归一化
func (s *VideoService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
