package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	iredis "VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/cmd/model"
	"VidHub.com/cmd/video/dal/db"
	"VidHub.com/pkg/cache"
	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/database/dbtest"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	svc *VideoService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	return &fixture{db: gdb, svc: NewVideoService(db.NewStore(gdb), nil, nil, 24, 100)}
}

func (f *fixture) profile(t *testing.T, id, username string, subscribers int64) *model.Profile {
	t.Helper()
	p := &model.Profile{ID: id, Username: username, SubscriberCount: subscribers}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) video(t *testing.T, id, creatorID, status string, createdAt time.Time) *model.Video {
	t.Helper()
	v := &model.Video{
		ID: id, CreatorID: creatorID, Title: "title " + id, Category: "music",
		Status: status, VideoUrl: "https://cdn.example.com/" + id + ".mp4",
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func (f *fixture) comment(t *testing.T, id, videoID, userID string, parentID *string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&model.Comment{
		ID: id, VideoID: videoID, UserID: userID, ParentID: parentID,
		Content: "content " + id, CreatedAt: createdAt,
	}).Error)
}

func TestListPublishedVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.profile(t, "big", "bigchannel", 1_500_000)
	f.profile(t, "small", "smallchannel", 500_000)
	f.video(t, "v1", "big", "published", base)
	f.video(t, "v2", "small", "published", base.Add(time.Hour))
	f.video(t, "v3", "small", "draft", base.Add(2*time.Hour))

	items, err := f.svc.ListPublishedVideos(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	t.Run("最新的草稿不出现在首页", func(t *testing.T) {
		assert.Equal(t, "v2", items[0].ID)
		assert.Equal(t, "v1", items[1].ID)
	})

	t.Run("认证徽章按订阅数计算", func(t *testing.T) {
		assert.False(t, items[0].Creator.Verified)
		assert.Equal(t, int64(500_000), items[0].Creator.SubscriberCount)
		assert.True(t, items[1].Creator.Verified)
		assert.Equal(t, "bigchannel", items[1].Creator.DisplayName)
	})

	t.Run("分页", func(t *testing.T) {
		items, err := f.svc.ListPublishedVideos(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "v1", items[0].ID)
	})
}

func TestListPublishedVideosLimit(t *testing.T) {
	f := newFixture(t)
	f.profile(t, "c", "creator", 0)
	for i := 0; i < 30; i++ {
		f.video(t, fmt.Sprintf("v%02d", i), "c", "published", base.Add(time.Duration(i)*time.Minute))
	}

	items, err := f.svc.ListPublishedVideos(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 24)
	assert.Equal(t, "v29", items[0].ID)

	f.svc.maxLimit = 10
	items, err = f.svc.ListPublishedVideos(context.Background(), 500, 0)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestGetVideoDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "c", "creator", 1_000_000)
	v := f.video(t, "v1", "c", "published", base)
	f.video(t, "draft", "c", "draft", base)
	require.NoError(t, f.db.Model(v).UpdateColumn("like_count", -3).Error)

	detail, err := f.svc.GetVideoDetail(ctx, session.Anonymous, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), detail.Video.LikeCount)
	require.NotNil(t, detail.Channel)
	assert.True(t, detail.Channel.Verified)
	assert.Equal(t, "1.0M", detail.Channel.FormattedSubscriber)

	t.Run("不存在", func(t *testing.T) {
		_, err := f.svc.GetVideoDetail(ctx, session.Anonymous, "missing")
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})

	t.Run("草稿只对作者可见", func(t *testing.T) {
		_, err := f.svc.GetVideoDetail(ctx, session.Session{UserID: "other"}, "draft")
		assert.True(t, errno.Is(err, errno.NotFoundErr))
		detail, err := f.svc.GetVideoDetail(ctx, session.Session{UserID: "c"}, "draft")
		require.NoError(t, err)
		assert.Equal(t, "draft", detail.Video.Status)
	})
}

func TestGetVideoDetailCounterCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	f.svc.counters = iredis.NewCounterCache(client, time.Hour)

	f.profile(t, "c", "creator", 10)
	f.video(t, "v1", "c", "published", base)

	t.Run("缓存未命中时使用行数据", func(t *testing.T) {
		detail, err := f.svc.GetVideoDetail(ctx, session.Anonymous, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), detail.Video.LikeCount)
		assert.Equal(t, int64(10), detail.Channel.SubscriberCount)
	})

	t.Run("缓存命中覆盖计数", func(t *testing.T) {
		require.NoError(t, client.HSet(ctx, fmt.Sprintf(constants.VideoCountKeyTemplate, "v1"),
			"like_count", 7, "view_count", 1_500).Err())
		require.NoError(t, client.HSet(ctx, fmt.Sprintf(constants.ProfileCountKeyTemplate, "c"),
			"subscriber_count", 2_000_000).Err())

		detail, err := f.svc.GetVideoDetail(ctx, session.Anonymous, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), detail.Video.LikeCount)
		assert.Equal(t, int64(0), detail.Video.DislikeCount)
		assert.Equal(t, "1.5K", detail.Video.FormattedViews)
		assert.Equal(t, int64(2_000_000), detail.Channel.SubscriberCount)
		assert.True(t, detail.Channel.Verified)
		assert.Equal(t, "2.0M", detail.Channel.FormattedSubscriber)

		page, err := f.svc.GetChannel(ctx, session.Anonymous, "creator")
		require.NoError(t, err)
		assert.Equal(t, int64(2_000_000), page.Channel.SubscriberCount)
	})

	t.Run("缓存读取失败时回退到行数据", func(t *testing.T) {
		mr.HSet(fmt.Sprintf(constants.VideoCountKeyTemplate, "v1"), "like_count", "not-a-number")
		detail, err := f.svc.GetVideoDetail(ctx, session.Anonymous, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), detail.Video.LikeCount)
	})
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "c", "creator", 0)
	f.profile(t, "u", "viewer", 0)
	f.video(t, "v1", "c", "published", base)
	f.video(t, "draft", "c", "draft", base)

	f.comment(t, "c1", "v1", "u", nil, base)
	f.comment(t, "c2", "v1", "c", nil, base.Add(time.Minute))
	parent := "c1"
	f.comment(t, "r2", "v1", "c", &parent, base.Add(3*time.Minute))
	f.comment(t, "r1", "v1", "u", &parent, base.Add(2*time.Minute))

	top, err := f.svc.ListTopLevelComments(ctx, session.Anonymous, "v1")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c2", top[0].ID)
	assert.Equal(t, "c1", top[1].ID)
	assert.Equal(t, "viewer", top[1].Author.Username)

	replies, err := f.svc.ListReplies(ctx, session.Anonymous, "c1")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "r1", replies[0].ID)
	assert.Equal(t, "r2", replies[1].ID)
	assert.Equal(t, "c1", replies[0].ParentID)

	t.Run("草稿视频的评论不可见", func(t *testing.T) {
		_, err := f.svc.ListTopLevelComments(ctx, session.Anonymous, "draft")
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})

	t.Run("回复的评论不存在", func(t *testing.T) {
		_, err := f.svc.ListReplies(ctx, session.Anonymous, "missing")
		assert.True(t, errno.Is(err, errno.NotFoundErr))
	})
}

func TestCommentsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ccm := cache.NewCommentCacheManager(client)
	f.svc.comments = ccm

	f.profile(t, "u", "viewer", 0)
	f.video(t, "v1", "u", "published", base)
	f.comment(t, "c1", "v1", "u", nil, base)

	top, err := f.svc.ListTopLevelComments(ctx, session.Anonymous, "v1")
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.True(t, mr.Exists("video:comments:v1:top"))

	// 缓存命中期间新评论不可见, 失效后可见
	f.comment(t, "c2", "v1", "u", nil, base.Add(time.Minute))
	top, err = f.svc.ListTopLevelComments(ctx, session.Anonymous, "v1")
	require.NoError(t, err)
	assert.Len(t, top, 1)

	require.NoError(t, ccm.InvalidateVideoComments(ctx, "v1"))
	top, err = f.svc.ListTopLevelComments(ctx, session.Anonymous, "v1")
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestGetChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "c", "creator", 2_345)
	f.video(t, "v1", "c", "published", base)
	f.video(t, "v2", "c", "private", base.Add(time.Hour))

	page, err := f.svc.GetChannel(ctx, session.Anonymous, "creator")
	require.NoError(t, err)
	assert.Equal(t, "creator", page.Channel.DisplayName)
	assert.Equal(t, "2.3K", page.Channel.FormattedSubscriber)
	assert.False(t, page.Channel.Verified)
	require.Len(t, page.Videos, 1)

	page, err = f.svc.GetChannel(ctx, session.Session{UserID: "c"}, "creator")
	require.NoError(t, err)
	assert.Len(t, page.Videos, 2)

	_, err = f.svc.GetChannel(ctx, session.Anonymous, "nobody")
	assert.True(t, errno.Is(err, errno.NotFoundErr))
}

func TestCreateVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, "c", "creator", 0)
	sess := session.Session{UserID: "c"}

	t.Run("默认值与标签拆分", func(t *testing.T) {
		item, err := f.svc.CreateVideo(ctx, sess, &CreateVideoRequest{
			Title: "  My video ", VideoUrl: " https://cdn.example.com/x.mp4 ", Tags: "go, redis,, gorm ",
		})
		require.NoError(t, err)
		assert.Equal(t, "My video", item.Title)
		assert.Equal(t, "entertainment", item.Category)
		assert.Equal(t, "published", item.Status)
		assert.Equal(t, []string{"go", "redis", "gorm"}, item.Tags)
		assert.Equal(t, int64(0), item.ViewCount)
	})

	invalid := map[string]*CreateVideoRequest{
		"标题为空":   {Title: "   ", VideoUrl: "u"},
		"地址为空":   {Title: "t", VideoUrl: " "},
		"未知分类":   {Title: "t", VideoUrl: "u", Category: "cats"},
		"未知状态":   {Title: "t", VideoUrl: "u", Status: "deleted"},
		"时长为负数": {Title: "t", VideoUrl: "u", Duration: -1},
	}
	for name, req := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateVideo(ctx, sess, req)
			assert.True(t, errno.Is(err, errno.ValidationErr))
		})
	}

	t.Run("未登录", func(t *testing.T) {
		_, err := f.svc.CreateVideo(ctx, session.Anonymous, &CreateVideoRequest{Title: "t", VideoUrl: "u"})
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})
}
