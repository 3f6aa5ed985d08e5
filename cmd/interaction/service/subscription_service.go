package service

import (
	"context"

	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// SubscriptionResult 订阅状态与频道计数
type SubscriptionResult struct {
	ChannelID       string `json:"channel_id"`
	Subscribed      bool   `json:"subscribed"`
	SubscriberCount int64  `json:"subscriber_count"`
	Verified        bool   `json:"verified"`
}

type SubscriptionService struct {
	*Deps
}

func NewSubscriptionService(deps *Deps) *SubscriptionService {
	return &SubscriptionService{Deps: deps}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, sess session.Session, channelID string) (*SubscriptionResult, error) {
	return s.apply(ctx, sess, channelID, true)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, sess session.Session, channelID string) (*SubscriptionResult, error) {
	return s.apply(ctx, sess, channelID, false)
}

// 重复订阅视为成功, 不产生计数增量
func (s *SubscriptionService) apply(ctx context.Context, sess session.Session, channelID string, subscribe bool) (*SubscriptionResult, error) {
	if err := s.checkWrite(sess); err != nil {
		return nil, err
	}
	if sess.UserID == channelID {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("cannot subscribe to your own channel"))
	}
	if _, err := s.Store.GetProfile(ctx, channelID); err != nil {
		return nil, errors.WithMessage(err, "get channel")
	}

	changed, count, err := s.Store.ApplySubscription(ctx, sess.UserID, channelID, subscribe)
	if err != nil {
		return nil, errors.WithMessage(err, "apply subscription")
	}
	if changed {
		s.afterSubscription(ctx, sess.UserID, channelID, subscribe, count)
	}
	return &SubscriptionResult{
		ChannelID:       channelID,
		Subscribed:      subscribe,
		SubscriberCount: count,
		Verified:        engagement.IsVerifiedCount(count),
	}, nil
}

func (s *SubscriptionService) afterSubscription(ctx context.Context, subscriberID, channelID string, subscribed bool, count int64) {
	if s.Cache != nil {
		if err := s.Cache.SetProfileCounters(ctx, channelID, map[engagement.Counter]int64{engagement.CounterSubscribers: count}); err != nil {
			hlog.CtxWarnf(ctx, "write-through subscriber_count of %s failed: %v", channelID, err)
		}
	}
	if s.Dirty != nil {
		if err := s.Dirty.MarkChannel(ctx, channelID); err != nil {
			hlog.CtxWarnf(ctx, "mark channel %s dirty failed: %v", channelID, err)
		}
	}
	event := mq.NewSubscriptionEvent(subscriberID, channelID, subscribed, count)
	if err := s.producer().PublishSubscriptionEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "publish subscription event failed: %v", err)
	}
}

// IsSubscribed 匿名用户恒为 false
func (s *SubscriptionService) IsSubscribed(ctx context.Context, sess session.Session, channelID string) (bool, error) {
	if sess.IsAnonymous() {
		return false, nil
	}
	ok, err := s.Store.IsSubscribed(ctx, sess.UserID, channelID)
	if err != nil {
		return false, errors.WithMessage(err, "check subscription")
	}
	return ok, nil
}
