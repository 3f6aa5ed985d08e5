package redis

import (
	"context"
	"fmt"
	"time"

	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// VoteLocker 按 (user, video) 串行化投票, 锁只在单次请求内持有
type VoteLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewVoteLocker(client redis.UniversalClient, expiry time.Duration) *VoteLocker {
	if expiry <= 0 {
		expiry = 5 * time.Second
	}
	return &VoteLocker{rs: redsync.New(goredis.NewPool(client)), expiry: expiry}
}

// Lock 获取锁, 返回的 unlock 必须调用.
// 锁被占用到重试耗尽时返回 TransientStoreErr; Redis 不可用时降级为无锁执行
func (l *VoteLocker) Lock(ctx context.Context, userID, videoID string) (func(), error) {
	name := fmt.Sprintf(constants.VoteLockKeyTemplate, userID, videoID)
	mutex := l.rs.NewMutex(name,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(16),
		redsync.WithRetryDelay(50*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if isLockContention(err) {
			return func() {}, errors.WithStack(errno.TransientStoreErr.WithMessage("acquire vote lock: " + err.Error()))
		}
		// 数据库的条件更新仍然兜底并发
		hlog.CtxWarnf(ctx, "vote lock %s unavailable, continue without lock: %v", name, err)
		return func() {}, nil
	}
	return func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			hlog.CtxWarnf(ctx, "release vote lock %s failed: %v", name, err)
		}
	}, nil
}

func isLockContention(err error) bool {
	var taken *redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken)
}
