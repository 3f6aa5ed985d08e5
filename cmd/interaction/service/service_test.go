package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"VidHub.com/cmd/interaction/dal/db"
	"VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/cmd/model"
	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/database/dbtest"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealth struct{ readOnly bool }

func (f *fakeHealth) ReadOnly() bool { return f.readOnly }

// recordingProducer 记录发布的事件
type recordingProducer struct {
	mu            sync.Mutex
	votes         []*mq.VoteEvent
	comments      []*mq.CommentEvent
	subscriptions []*mq.SubscriptionEvent
	views         []*mq.ViewEvent
}

func (p *recordingProducer) PublishVoteEvent(_ context.Context, e *mq.VoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.votes = append(p.votes, e)
	return nil
}

func (p *recordingProducer) PublishCommentEvent(_ context.Context, e *mq.CommentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comments = append(p.comments, e)
	return nil
}

func (p *recordingProducer) PublishSubscriptionEvent(_ context.Context, e *mq.SubscriptionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = append(p.subscriptions, e)
	return nil
}

func (p *recordingProducer) PublishViewEvent(_ context.Context, e *mq.ViewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, e)
	return nil
}

type commentInvalidator struct{ videos []string }

func (c *commentInvalidator) InvalidateVideoComments(_ context.Context, videoID string) error {
	c.videos = append(c.videos, videoID)
	return nil
}

type testEnv struct {
	deps     *Deps
	mr       *miniredis.Miniredis
	health   *fakeHealth
	producer *recordingProducer
	comments *commentInvalidator
}

const (
	creatorID = "creator-1"
	videoID   = "video-1"
	draftID   = "video-draft"
	userA     = "user-a"
	userB     = "user-b"
)

var (
	sessA = session.Session{UserID: userA, Username: "alice"}
	sessB = session.Session{UserID: userB, Username: "bob"}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.New(t)

	require.NoError(t, gdb.WithContext(ctx).Create(&model.Profile{ID: creatorID, Username: "creator"}).Error)
	require.NoError(t, gdb.WithContext(ctx).Create(&model.Profile{ID: userA, Username: "alice"}).Error)
	require.NoError(t, gdb.WithContext(ctx).Create(&model.Profile{ID: userB, Username: "bob"}).Error)
	require.NoError(t, gdb.WithContext(ctx).Create(&model.Video{
		ID: videoID, CreatorID: creatorID, Title: "V", Category: "music",
		Status: "published", VideoUrl: "https://cdn.example.com/v.mp4",
	}).Error)
	require.NoError(t, gdb.WithContext(ctx).Create(&model.Video{
		ID: draftID, CreatorID: creatorID, Title: "draft", Category: "music",
		Status: "draft", VideoUrl: "https://cdn.example.com/d.mp4",
	}).Error)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		mr:       mr,
		health:   &fakeHealth{},
		producer: &recordingProducer{},
		comments: &commentInvalidator{},
	}
	env.deps = &Deps{
		Store:    db.NewStore(gdb),
		Cache:    redis.NewCounterCache(client, time.Hour),
		Dirty:    redis.NewDirtySet(client),
		Locker:   redis.NewVoteLocker(client, 2*time.Second),
		Views:    redis.NewViewLimiter(client, 30*time.Minute),
		Producer: env.producer,
		Health:   env.health,
		Comments: env.comments,
	}
	return env
}

func (e *testEnv) video(t *testing.T, id string) *model.Video {
	t.Helper()
	v, err := e.deps.Store.GetVideo(context.Background(), id)
	require.NoError(t, err)
	return v
}

func (e *testEnv) assertReconciled(t *testing.T, id string) {
	t.Helper()
	drifts, err := e.deps.Store.ReconcileVideo(context.Background(), id, false)
	require.NoError(t, err)
	for _, d := range drifts {
		assert.True(t, d.Consistent(), "%s stored=%d computed=%d", d.Counter, d.Stored, d.Computed)
	}
}

func TestVoteScenario(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVoteService(env.deps)
	ctx := context.Background()

	res, err := svc.Vote(ctx, sessA, videoID, engagement.IntentLike)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{State: engagement.StateLiked, LikeCount: 1, DislikeCount: 0}, res)

	res, err = svc.Vote(ctx, sessA, videoID, engagement.IntentDislike)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{State: engagement.StateDisliked, LikeCount: 0, DislikeCount: 1}, res)

	res, err = svc.Vote(ctx, sessA, videoID, engagement.IntentDislike)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{State: engagement.StateNone, LikeCount: 0, DislikeCount: 0}, res)

	state, err := svc.GetState(ctx, sessA, videoID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StateNone, state)

	t.Run("缓存回写与事件", func(t *testing.T) {
		counts, found, err := env.deps.Cache.GetVoteCounts(ctx, videoID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, engagement.Counts{}, counts)
		assert.Len(t, env.producer.votes, 3)
		assert.Equal(t, engagement.StateLiked, env.producer.votes[0].To)
		ok, err := env.mr.SIsMember(constants.DirtyVideoSetKey, videoID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	env.assertReconciled(t, videoID)
}

func TestVoteWithoutRedis(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVoteService(env.deps)
	ctx := context.Background()
	env.mr.Close()

	res, err := svc.Vote(ctx, sessA, videoID, engagement.IntentLike)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{State: engagement.StateLiked, LikeCount: 1, DislikeCount: 0}, res)
	assert.Equal(t, int64(1), env.video(t, videoID).LikeCount)
	env.assertReconciled(t, videoID)
}

func TestVoteRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVoteService(env.deps)
	ctx := context.Background()

	t.Run("匿名用户", func(t *testing.T) {
		_, err := svc.Vote(ctx, session.Anonymous, videoID, engagement.IntentLike)
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})

	t.Run("匿名用户优先于不存在的视频", func(t *testing.T) {
		_, err := svc.Vote(ctx, session.Anonymous, "missing", engagement.IntentLike)
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})

	t.Run("非法意图", func(t *testing.T) {
		_, err := svc.Vote(ctx, sessA, videoID, engagement.Intent("love"))
		assert.True(t, errno.Is(err, errno.ValidationErr))
	})

	t.Run("视频不存在", func(t *testing.T) {
		_, err := svc.Vote(ctx, sessA, "missing", engagement.IntentLike)
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})

	t.Run("草稿对非作者不可见", func(t *testing.T) {
		_, err := svc.Vote(ctx, sessA, draftID, engagement.IntentLike)
		assert.True(t, errno.Is(err, errno.NotFoundErr))

		res, err := svc.Vote(ctx, session.Session{UserID: creatorID}, draftID, engagement.IntentLike)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.LikeCount)
	})

	t.Run("只读模式", func(t *testing.T) {
		env.health.readOnly = true
		defer func() { env.health.readOnly = false }()
		_, err := svc.Vote(ctx, sessA, videoID, engagement.IntentLike)
		assert.True(t, errno.Is(err, errno.ReadOnlyErr))
		assert.Equal(t, int64(0), env.video(t, videoID).LikeCount)
	})

	state, err := svc.GetState(ctx, session.Anonymous, videoID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StateNone, state)
}

// 另一个请求已经写入了同一用户的投票: 提交时检测到冲突, 以本次请求的目标状态为准
func TestVoteSettlesAfterConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVoteService(env.deps)
	ctx := context.Background()

	eff, err := engagement.Transition(engagement.StateNone, engagement.IntentDislike)
	require.NoError(t, err)
	_, err = env.deps.Store.ApplyVote(ctx, userA, videoID, eff)
	require.NoError(t, err)

	// 以过期状态 NONE 直接提交 LIKE
	stale, err := engagement.Transition(engagement.StateNone, engagement.IntentLike)
	require.NoError(t, err)
	_, err = env.deps.Store.ApplyVote(ctx, userA, videoID, stale)
	assert.True(t, errno.Is(err, errno.ConflictErr))

	current, err := env.deps.Store.GetState(ctx, userA, videoID)
	require.NoError(t, err)
	settled, err := engagement.Settle(current, stale.To)
	require.NoError(t, err)
	counts, err := env.deps.Store.ApplyVote(ctx, userA, videoID, settled)
	require.NoError(t, err)
	assert.Equal(t, engagement.Counts{LikeCount: 1, DislikeCount: 0}, counts)

	state, err := svc.GetState(ctx, sessA, videoID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StateLiked, state)
	env.assertReconciled(t, videoID)
}

func TestConcurrentVotesStayConsistent(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Locker = nil
	svc := NewVoteService(env.deps)
	ctx := context.Background()

	users := []session.Session{sessA, sessB, {UserID: "user-c"}, {UserID: "user-d"}}
	intents := []engagement.Intent{engagement.IntentLike, engagement.IntentDislike}

	var wg sync.WaitGroup
	for i, sess := range users {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(sess session.Session, intent engagement.Intent) {
				defer wg.Done()
				_, err := svc.Vote(ctx, sess, videoID, intent)
				if err != nil {
					assert.True(t, errno.Is(err, errno.ConflictErr), "unexpected error: %v", err)
				}
			}(sess, intents[(i+j)%2])
		}
	}
	wg.Wait()

	env.assertReconciled(t, videoID)
	v := env.video(t, videoID)
	assert.GreaterOrEqual(t, v.LikeCount, int64(0))
	assert.GreaterOrEqual(t, v.DislikeCount, int64(0))
	assert.LessOrEqual(t, v.LikeCount+v.DislikeCount, int64(len(users)))
}

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCommentService(env.deps)
	ctx := context.Background()

	t.Run("空白内容被拒绝且计数不变", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, sessA, &CreateCommentRequest{VideoID: videoID, Content: "   \n\t"})
		assert.True(t, errno.Is(err, errno.ValidationErr))
		assert.Equal(t, int64(0), env.video(t, videoID).CommentCount)
	})

	t.Run("匿名用户", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, session.Anonymous, &CreateCommentRequest{VideoID: videoID, Content: "hi"})
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})

	var top *model.Comment
	t.Run("发表评论", func(t *testing.T) {
		c, err := svc.CreateComment(ctx, sessA, &CreateCommentRequest{VideoID: videoID, Content: "  great video  "})
		require.NoError(t, err)
		assert.Equal(t, "great video", c.Content)
		assert.Nil(t, c.ParentID)
		assert.Equal(t, int64(1), env.video(t, videoID).CommentCount)
		assert.Equal(t, []string{videoID}, env.comments.videos)
		top = c
	})

	t.Run("回复", func(t *testing.T) {
		require.NotNil(t, top)
		reply, err := svc.CreateComment(ctx, sessB, &CreateCommentRequest{VideoID: videoID, Content: "agreed", ParentID: top.ID})
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, top.ID, *reply.ParentID)
		assert.Equal(t, int64(2), env.video(t, videoID).CommentCount)
	})

	t.Run("父评论属于其他视频", func(t *testing.T) {
		require.NotNil(t, top)
		_, err := svc.CreateComment(ctx, session.Session{UserID: creatorID}, &CreateCommentRequest{VideoID: draftID, Content: "x", ParentID: top.ID})
		assert.True(t, errno.Is(err, errno.ValidationErr))
	})

	t.Run("父评论不存在", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, sessA, &CreateCommentRequest{VideoID: videoID, Content: "x", ParentID: "missing"})
		assert.True(t, errno.Is(err, errno.NotFoundErr))
		assert.Equal(t, int64(2), env.video(t, videoID).CommentCount)
	})

	assert.Len(t, env.producer.comments, 2)
	assert.Equal(t, int64(2), env.producer.comments[1].CommentCount)
	env.assertReconciled(t, videoID)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.deps)
	ctx := context.Background()

	res, err := svc.Subscribe(ctx, sessA, creatorID)
	require.NoError(t, err)
	assert.Equal(t, &SubscriptionResult{ChannelID: creatorID, Subscribed: true, SubscriberCount: 1}, res)

	t.Run("重复订阅不增加计数", func(t *testing.T) {
		res, err := svc.Subscribe(ctx, sessA, creatorID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.SubscriberCount)
		assert.Len(t, env.producer.subscriptions, 1)
	})

	t.Run("订阅自己", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, session.Session{UserID: creatorID}, creatorID)
		assert.True(t, errno.Is(err, errno.ValidationErr))
	})

	t.Run("频道不存在", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, sessA, "nobody")
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})

	ok, err := svc.IsSubscribed(ctx, sessA, creatorID)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err = svc.Unsubscribe(ctx, sessA, creatorID)
	require.NoError(t, err)
	assert.False(t, res.Subscribed)
	assert.Equal(t, int64(0), res.SubscriberCount)

	t.Run("重复取消不会出现负数", func(t *testing.T) {
		res, err := svc.Unsubscribe(ctx, sessA, creatorID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.SubscriberCount)
	})

	ok, err = svc.IsSubscribed(ctx, session.Anonymous, creatorID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordView(t *testing.T) {
	env := newTestEnv(t)
	svc := NewViewService(env.deps)
	ctx := context.Background()

	res, err := svc.RecordView(ctx, sessA, videoID, "", 30)
	require.NoError(t, err)
	assert.Equal(t, &ViewResult{Counted: true, ViewCount: 1}, res)

	t.Run("同一会话窗口内不重复计数", func(t *testing.T) {
		res, err := svc.RecordView(ctx, sessA, videoID, "", 10)
		require.NoError(t, err)
		assert.Equal(t, &ViewResult{Counted: false, ViewCount: 1}, res)
	})

	t.Run("匿名观众按会话标识去重", func(t *testing.T) {
		res, err := svc.RecordView(ctx, session.Anonymous, videoID, "client-1", 0)
		require.NoError(t, err)
		assert.True(t, res.Counted)
		res, err = svc.RecordView(ctx, session.Anonymous, videoID, "client-1", 0)
		require.NoError(t, err)
		assert.False(t, res.Counted)
		assert.Equal(t, int64(2), res.ViewCount)
	})

	t.Run("窗口过期后重新计数", func(t *testing.T) {
		env.mr.FastForward(31 * time.Minute)
		res, err := svc.RecordView(ctx, sessA, videoID, "", 5)
		require.NoError(t, err)
		assert.Equal(t, &ViewResult{Counted: true, ViewCount: 3}, res)
	})

	creator, err := env.deps.Store.GetProfile(ctx, creatorID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), creator.TotalViews)

	history, err := env.deps.Store.ListWatchHistory(ctx, userA, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	t.Run("草稿不计数", func(t *testing.T) {
		_, err := svc.RecordView(ctx, sessA, draftID, "", 0)
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})
}

func TestConsistencyService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	votes := NewVoteService(env.deps)
	subs := NewSubscriptionService(env.deps)

	_, err := votes.Vote(ctx, sessA, videoID, engagement.IntentLike)
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, sessB, creatorID)
	require.NoError(t, err)

	// 人为制造计数漂移
	gdb := env.deps.Store.DB()
	require.NoError(t, gdb.Model(&model.Video{}).Where("id = ?", videoID).
		Updates(map[string]interface{}{"like_count": 5, "dislike_count": 2}).Error)
	require.NoError(t, gdb.Model(&model.Profile{}).Where("id = ?", creatorID).
		Update("subscriber_count", 9).Error)

	dcs := NewDataConsistencyService(env.deps.Store, env.deps.Cache, env.deps.Dirty, ConsistencyOptions{})
	results := dcs.RunOnce(ctx)
	require.Len(t, results, 2)

	byType := map[string]ConsistencyCheckResult{}
	for _, r := range results {
		byType[r.ResourceType] = r
	}
	assert.False(t, byType[model.ResourceTypeVideo].IsConsistent)
	assert.Contains(t, byType[model.ResourceTypeVideo].Difference, "like_count stored=5 computed=1")
	assert.False(t, byType[model.ResourceTypeProfile].IsConsistent)

	v := env.video(t, videoID)
	assert.Equal(t, int64(1), v.LikeCount)
	assert.Equal(t, int64(0), v.DislikeCount)
	creator, err := env.deps.Store.GetProfile(ctx, creatorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), creator.SubscriberCount)

	counts, found, err := env.deps.Cache.GetVoteCounts(ctx, videoID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, engagement.Counts{LikeCount: 1}, counts)

	t.Run("报告", func(t *testing.T) {
		report, err := dcs.GetConsistencyReport(ctx, 1)
		require.NoError(t, err)
		// 视频三个计数 + 频道一个计数
		assert.Equal(t, 4, report.TotalChecks)
		assert.Equal(t, 3, report.InconsistentCount)
		for _, item := range report.InconsistentItems {
			assert.True(t, item.Fixed)
			// 修正前缓存中是写穿的确认值
			require.NotNil(t, item.CacheValue)
			if item.CounterName == string(engagement.CounterLikes) {
				assert.Equal(t, int64(1), *item.CacheValue)
			}
		}
	})

	t.Run("再次检查已一致", func(t *testing.T) {
		result, err := dcs.ManualCheck(ctx, model.ResourceTypeVideo, videoID)
		require.NoError(t, err)
		assert.True(t, result.IsConsistent)
	})

	t.Run("不支持的资源类型", func(t *testing.T) {
		_, err := dcs.ManualCheck(ctx, "playlist", "p1")
		assert.True(t, errno.Is(err, errno.ValidationErr))
	})

	t.Run("清理", func(t *testing.T) {
		require.NoError(t, dcs.CleanupOldRecords(ctx, -1))
		report, err := dcs.GetConsistencyReport(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, report.TotalChecks)
	})

	require.NoError(t, dcs.Start())
	assert.Error(t, dcs.Start())
	require.NoError(t, dcs.Stop())
}

func TestEngagementEventHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	h := NewEngagementEventHandler(env.deps.Cache, env.deps.Dirty)

	eff, err := engagement.Transition(engagement.StateNone, engagement.IntentLike)
	require.NoError(t, err)
	require.NoError(t, h.HandleVoteEvent(ctx, mq.NewVoteEvent(userA, videoID, eff, engagement.Counts{LikeCount: 4})))
	require.NoError(t, h.HandleCommentEvent(ctx, mq.NewCommentEvent("c1", videoID, userA, "", 2)))
	require.NoError(t, h.HandleSubscriptionEvent(ctx, mq.NewSubscriptionEvent(userA, creatorID, true, 8)))
	require.NoError(t, h.HandleViewEvent(ctx, mq.NewViewEvent(userA, videoID, creatorID, 11)))

	values, found, err := env.deps.Cache.GetVideoCounters(ctx, videoID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(4), values[engagement.CounterLikes])
	assert.Equal(t, int64(2), values[engagement.CounterComments])
	assert.Equal(t, int64(11), values[engagement.CounterViews])

	profile, _, err := env.deps.Cache.GetProfileCounters(ctx, creatorID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), profile[engagement.CounterSubscribers])

	ok, err := env.mr.SIsMember(constants.DirtyChannelSetKey, creatorID)
	require.NoError(t, err)
	assert.True(t, ok)
}
