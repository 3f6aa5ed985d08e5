package service

import (
	"context"

	"VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// EngagementEventHandler 消费互动事件: 刷新计数缓存并标记待对账资源
type EngagementEventHandler struct {
	cache *redis.CounterCache
	dirty *redis.DirtySet
}

func NewEngagementEventHandler(cache *redis.CounterCache, dirty *redis.DirtySet) *EngagementEventHandler {
	return &EngagementEventHandler{cache: cache, dirty: dirty}
}

var _ mq.EventHandler = (*EngagementEventHandler)(nil)

// HandleVoteEvent 处理投票事件
func (h *EngagementEventHandler) HandleVoteEvent(ctx context.Context, event *mq.VoteEvent) error {
	hlog.CtxDebugf(ctx, "Processing vote event: %+v", event)
	if err := h.cache.SetVoteCounts(ctx, event.VideoID, event.Counts); err != nil {
		return err
	}
	if event.Delta.IsZero() {
		return nil
	}
	return h.dirty.MarkVideo(ctx, event.VideoID)
}

// HandleCommentEvent 处理评论事件
func (h *EngagementEventHandler) HandleCommentEvent(ctx context.Context, event *mq.CommentEvent) error {
	hlog.CtxDebugf(ctx, "Processing comment event: %+v", event)
	if err := h.cache.SetVideoCounters(ctx, event.VideoID, map[engagement.Counter]int64{
		engagement.CounterComments: event.CommentCount,
	}); err != nil {
		return err
	}
	return h.dirty.MarkVideo(ctx, event.VideoID)
}

// HandleSubscriptionEvent 处理订阅事件
func (h *EngagementEventHandler) HandleSubscriptionEvent(ctx context.Context, event *mq.SubscriptionEvent) error {
	hlog.CtxDebugf(ctx, "Processing subscription event: %+v", event)
	if err := h.cache.SetProfileCounters(ctx, event.ChannelID, map[engagement.Counter]int64{
		engagement.CounterSubscribers: event.SubscriberCount,
	}); err != nil {
		return err
	}
	return h.dirty.MarkChannel(ctx, event.ChannelID)
}

// HandleViewEvent 处理播放事件
func (h *EngagementEventHandler) HandleViewEvent(ctx context.Context, event *mq.ViewEvent) error {
	hlog.CtxDebugf(ctx, "Processing view event: %+v", event)
	return h.cache.SetVideoCounters(ctx, event.VideoID, map[engagement.Counter]int64{
		engagement.CounterViews: event.ViewCount,
	})
}
