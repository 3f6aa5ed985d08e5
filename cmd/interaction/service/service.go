package service

import (
	"context"

	"VidHub.com/cmd/interaction/dal/db"
	"VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/pkg/errors"
)

// CommentCacheInvalidator 评论列表缓存失效
type CommentCacheInvalidator interface {
	InvalidateVideoComments(ctx context.Context, videoID string) error
}

// Deps 互动服务依赖, 除 Store 外均可为空
type Deps struct {
	Store    *db.Store
	Cache    *redis.CounterCache
	Dirty    *redis.DirtySet
	Locker   *redis.VoteLocker
	Views    *redis.ViewLimiter
	Producer mq.MessageProducer
	Health   database.ReadOnlyChecker
	Comments CommentCacheInvalidator
}

func (d *Deps) producer() mq.MessageProducer {
	if d.Producer == nil {
		return mq.NoopProducer{}
	}
	return d.Producer
}

// 写操作公共前置检查: 先鉴权, 再检查只读模式
func (d *Deps) checkWrite(sess session.Session) error {
	if sess.IsAnonymous() {
		return errors.WithStack(errno.UnauthorizedErr)
	}
	return d.checkWritable()
}

func (d *Deps) checkWritable() error {
	if d.Health != nil && d.Health.ReadOnly() {
		return errors.WithStack(errno.ReadOnlyErr)
	}
	return nil
}

// 获取调用者可见的视频
func (d *Deps) visibleVideo(ctx context.Context, sess session.Session, videoID string) (*model.Video, error) {
	video, err := d.Store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(sess.UserID) {
		return nil, errors.WithStack(errno.NotFoundErr.WithMessage("video " + videoID + " not found"))
	}
	return video, nil
}
