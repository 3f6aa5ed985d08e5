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

// 冲突后按目标状态重试的次数上限
const maxVoteAttempts = 3

// VoteResult 投票提交后的确认值
type VoteResult struct {
	State        engagement.State `json:"state"`
	LikeCount    int64            `json:"like_count"`
	DislikeCount int64            `json:"dislike_count"`
}

type VoteService struct {
	*Deps
}

func NewVoteService(deps *Deps) *VoteService {
	return &VoteService{Deps: deps}
}

// Vote 点赞/点踩, 重复同一意图即取消
func (s *VoteService) Vote(ctx context.Context, sess session.Session, videoID string, intent engagement.Intent) (*VoteResult, error) {
	if err := s.checkWrite(sess); err != nil {
		return nil, err
	}
	if !intent.Valid() {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("invalid vote intent " + string(intent)))
	}
	if _, err := s.visibleVideo(ctx, sess, videoID); err != nil {
		return nil, errors.WithMessage(err, "vote")
	}

	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, sess.UserID, videoID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	current, err := s.Store.GetState(ctx, sess.UserID, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "read engagement state")
	}
	eff, err := engagement.Transition(current, intent)
	if err != nil {
		return nil, err
	}

	var counts engagement.Counts
	for attempt := 1; ; attempt++ {
		counts, err = s.Store.ApplyVote(ctx, sess.UserID, videoID, eff)
		if err == nil {
			break
		}
		if !errno.Is(err, errno.ConflictErr) || attempt >= maxVoteAttempts {
			return nil, errors.WithMessage(err, "apply vote")
		}
		// 并发首投或状态已变化: 重新读取并直接落到本次请求的目标状态, 后写者生效
		hlog.CtxInfof(ctx, "vote conflict on %s/%s, settle to %s (attempt %d)", sess.UserID, videoID, eff.To, attempt)
		current, err = s.Store.GetState(ctx, sess.UserID, videoID)
		if err != nil {
			return nil, errors.WithMessage(err, "re-read engagement state")
		}
		if eff, err = engagement.Settle(current, eff.To); err != nil {
			return nil, err
		}
	}

	s.afterVote(ctx, sess.UserID, videoID, eff, counts)

	return &VoteResult{State: eff.To, LikeCount: counts.LikeCount, DislikeCount: counts.DislikeCount}, nil
}

// 提交后的缓存回写、对账标记与事件发布, 失败只记录日志
func (s *VoteService) afterVote(ctx context.Context, userID, videoID string, eff engagement.Effect, counts engagement.Counts) {
	if s.Cache != nil {
		if err := s.Cache.SetVoteCounts(ctx, videoID, counts); err != nil {
			hlog.CtxWarnf(ctx, "write-through vote counts of %s failed: %v", videoID, err)
		}
	}
	if s.Dirty != nil && !eff.Delta.IsZero() {
		if err := s.Dirty.MarkVideo(ctx, videoID); err != nil {
			hlog.CtxWarnf(ctx, "mark video %s dirty failed: %v", videoID, err)
		}
	}
	if err := s.producer().PublishVoteEvent(ctx, mq.NewVoteEvent(userID, videoID, eff, counts)); err != nil {
		hlog.CtxWarnf(ctx, "publish vote event failed: %v", err)
	}
}

// GetState 当前投票状态, 匿名用户恒为 NONE
func (s *VoteService) GetState(ctx context.Context, sess session.Session, videoID string) (engagement.State, error) {
	if sess.IsAnonymous() {
		return engagement.StateNone, nil
	}
	state, err := s.Store.GetState(ctx, sess.UserID, videoID)
	if err != nil {
		return engagement.StateNone, errors.WithMessage(err, "get engagement state")
	}
	return state, nil
}
