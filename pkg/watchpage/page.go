package watchpage

import (
	"context"
	"strings"
	"sync"

	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
)

// Channel 播放页上的频道信息
type Channel struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	DisplayName         string `json:"display_name"`
	AvatarUrl           string `json:"avatar_url"`
	SubscriberCount     int64  `json:"subscriber_count"`
	Verified            bool   `json:"verified"`
	FormattedSubscriber string `json:"formatted_subscriber"`
}

// Video 播放页上的视频信息
type Video struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	VideoUrl          string   `json:"video_url"`
	FormattedDuration string   `json:"formatted_duration"`
	Tags              []string `json:"tags"`
	ViewCount         int64    `json:"view_count"`
	FormattedViews    string   `json:"formatted_views"`
	LikeCount         int64    `json:"like_count"`
	DislikeCount      int64    `json:"dislike_count"`
	CommentCount      int64    `json:"comment_count"`
}

type watchPage struct {
	Video      Video            `json:"video"`
	Channel    *Channel         `json:"channel"`
	State      engagement.State `json:"state"`
	Subscribed bool             `json:"subscribed"`
}

type voteResult struct {
	State engagement.State `json:"state"`
	engagement.Counts
}

type subscriptionResult struct {
	Subscribed      bool  `json:"subscribed"`
	SubscriberCount int64 `json:"subscriber_count"`
	Verified        bool  `json:"verified"`
}

// Page 单个视频的播放页状态, 投票通过乐观覆盖层展示
type Page struct {
	client  *Client
	overlay *engagement.Overlay

	mu         sync.Mutex
	video      Video
	channel    *Channel
	subscribed bool
}

// Load 打开播放页
func (c *Client) Load(ctx context.Context, videoID string) (*Page, error) {
	var wp watchPage
	if err := c.do(ctx, consts.MethodGet, "/api/v1/videos/"+videoID, nil, &wp); err != nil {
		return nil, errors.WithMessage(err, "load watch page")
	}
	return &Page{
		client: c,
		overlay: engagement.NewOverlay(engagement.Snapshot{
			State:  wp.State,
			Counts: engagement.Counts{LikeCount: wp.Video.LikeCount, DislikeCount: wp.Video.DislikeCount},
		}),
		video:      wp.Video,
		channel:    wp.Channel,
		subscribed: wp.Subscribed,
	}, nil
}

func (p *Page) Video() Video {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video
}

// Channel 频道不存在时返回 nil
func (p *Page) Channel() *Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return nil
	}
	ch := *p.channel
	return &ch
}

func (p *Page) Subscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subscribed
}

// Engagement 当前展示的投票状态与计数
func (p *Page) Engagement() (engagement.Snapshot, engagement.Phase) {
	return p.overlay.View()
}

// LastError 最近一次被回滚的投票错误
func (p *Page) LastError() error {
	return p.overlay.LastError()
}

// Vote 乐观投票: 立即展示预测值, 服务端确认后替换, 失败回滚到上次确认值
// 匿名用户不发请求, 直接返回 UnauthorizedErr
func (p *Page) Vote(ctx context.Context, intent engagement.Intent) (engagement.Snapshot, error) {
	if p.client.Anonymous() {
		return p.overlay.Confirmed(), errors.WithStack(errno.UnauthorizedErr.WithMessage("Sign in to vote"))
	}
	if _, err := p.overlay.Begin(intent); err != nil {
		return p.overlay.Confirmed(), err
	}

	var res voteResult
	err := p.client.do(ctx, consts.MethodPost, "/api/v1/videos/"+p.video.ID+"/vote",
		map[string]string{"intent": string(intent)}, &res)
	if err != nil {
		hlog.CtxWarnf(ctx, "vote on %s failed, rollback: %v", p.video.ID, err)
		p.overlay.Rollback(err)
		return p.overlay.Confirmed(), err
	}

	confirmed := engagement.Snapshot{State: res.State, Counts: res.Counts}
	p.overlay.Confirm(confirmed)
	p.mu.Lock()
	p.video.LikeCount, p.video.DislikeCount = res.LikeCount, res.DislikeCount
	p.mu.Unlock()
	return p.overlay.Confirmed(), nil
}

// Comment 发表评论, 空白内容在本地拒绝
func (p *Page) Comment(ctx context.Context, content, parentID string) error {
	if p.client.Anonymous() {
		return errors.WithStack(errno.UnauthorizedErr.WithMessage("Sign in to comment"))
	}
	if strings.TrimSpace(content) == "" {
		return errors.WithStack(errno.ValidationErr.WithMessage("Comment content cannot be empty"))
	}
	body := map[string]string{"content": content, "parent_id": parentID}
	if err := p.client.do(ctx, consts.MethodPost, "/api/v1/videos/"+p.video.ID+"/comments", body, nil); err != nil {
		return err
	}
	p.mu.Lock()
	p.video.CommentCount++
	p.mu.Unlock()
	return nil
}

// ToggleSubscribe 订阅/取消订阅频道
func (p *Page) ToggleSubscribe(ctx context.Context) (bool, error) {
	if p.client.Anonymous() {
		return false, errors.WithStack(errno.UnauthorizedErr.WithMessage("Sign in to subscribe"))
	}
	ch := p.Channel()
	if ch == nil {
		return false, errors.WithStack(errno.NotFoundErr.WithMessage("channel not found"))
	}

	method := consts.MethodPost
	if p.Subscribed() {
		method = consts.MethodDelete
	}
	var res subscriptionResult
	if err := p.client.do(ctx, method, "/api/v1/subscriptions/"+ch.ID, nil, &res); err != nil {
		return p.Subscribed(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribed = res.Subscribed
	p.channel.SubscriberCount = res.SubscriberCount
	p.channel.Verified = res.Verified
	return p.subscribed, nil
}

// RecordView 上报一次播放, 匿名观众使用 sessionKey 去重
func (p *Page) RecordView(ctx context.Context, sessionKey string, watchTime int64) (bool, error) {
	var res struct {
		Counted   bool  `json:"counted"`
		ViewCount int64 `json:"view_count"`
	}
	body := map[string]interface{}{"viewer_key": sessionKey, "watch_time": watchTime}
	if err := p.client.do(ctx, consts.MethodPost, "/api/v1/videos/"+p.video.ID+"/views", body, &res); err != nil {
		return false, err
	}
	p.mu.Lock()
	p.video.ViewCount = res.ViewCount
	p.mu.Unlock()
	return res.Counted, nil
}
