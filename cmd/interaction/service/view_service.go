package service

import (
	"context"

	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// ViewResult 播放计数结果
type ViewResult struct {
	Counted   bool  `json:"counted"`
	ViewCount int64 `json:"view_count"`
}

type ViewService struct {
	*Deps
}

func NewViewService(deps *Deps) *ViewService {
	return &ViewService{Deps: deps}
}

// RecordView 记录一次播放, 同一观众在会话窗口内只计一次
// viewerKey 用于匿名观众去重 (如客户端会话标识), 登录用户使用用户 ID
func (s *ViewService) RecordView(ctx context.Context, sess session.Session, videoID, viewerKey string, watchTime int64) (*ViewResult, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	video, err := s.visibleVideo(ctx, sess, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "record view")
	}

	if !sess.IsAnonymous() {
		viewerKey = "user:" + sess.UserID
	} else if viewerKey == "" {
		viewerKey = "anonymous"
	}

	if s.Views != nil {
		allowed, err := s.Views.Allow(ctx, viewerKey, videoID)
		if err != nil {
			// 无法判断会话边界时不计数, 宁少勿多
			hlog.CtxWarnf(ctx, "view limiter unavailable, skip counting %s: %v", videoID, err)
			return &ViewResult{Counted: false, ViewCount: engagement.Clamp(video.ViewCount)}, nil
		}
		if !allowed {
			return &ViewResult{Counted: false, ViewCount: engagement.Clamp(video.ViewCount)}, nil
		}
	}

	views, err := s.Store.ApplyView(ctx, sess.UserID, video, watchTime)
	if err != nil {
		return nil, errors.WithMessage(err, "apply view")
	}

	if s.Cache != nil {
		if err := s.Cache.SetVideoCounters(ctx, videoID, map[engagement.Counter]int64{engagement.CounterViews: views}); err != nil {
			hlog.CtxWarnf(ctx, "write-through view_count of %s failed: %v", videoID, err)
		}
	}
	if err := s.producer().PublishViewEvent(ctx, mq.NewViewEvent(sess.UserID, videoID, video.CreatorID, views)); err != nil {
		hlog.CtxWarnf(ctx, "publish view event failed: %v", err)
	}
	return &ViewResult{Counted: true, ViewCount: views}, nil
}
