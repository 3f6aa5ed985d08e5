package service

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"VidHub.com/pkg/utils"
	"github.com/pkg/errors"
)

// ChannelProfile 频道完整资料
type ChannelProfile struct {
	CreatorSummary
	Bio                 string `json:"bio"`
	TotalViews          int64  `json:"total_views"`
	FormattedSubscriber string `json:"formatted_subscriber"`
}

func newChannelProfile(p *model.Profile) *ChannelProfile {
	summary := newCreatorSummary(p.ID, p)
	return &ChannelProfile{
		CreatorSummary:      summary,
		Bio:                 p.Bio,
		TotalViews:          engagement.Clamp(p.TotalViews),
		FormattedSubscriber: utils.FormatViews(summary.SubscriberCount),
	}
}

// VideoDetail 播放页数据
type VideoDetail struct {
	Video   *VideoItem      `json:"video"`
	Channel *ChannelProfile `json:"channel"`
}

// GetVideoDetail 视频详情, 非发布视频只对作者可见
func (s *VideoService) GetVideoDetail(ctx context.Context, sess session.Session, videoID string) (*VideoDetail, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetVideo failed")
	}
	if !video.VisibleTo(sess.UserID) {
		return nil, errors.WithStack(errno.NotFoundErr.WithMessage("video " + videoID + " not found"))
	}

	creator, err := s.store.GetProfile(ctx, video.CreatorID)
	if err != nil && !errno.Is(err, errno.NotFoundErr) {
		return nil, errors.WithMessage(err, "dao.GetProfile failed")
	}

	s.overlayVideoCounters(ctx, video)
	s.overlayProfileCounters(ctx, creator)

	detail := &VideoDetail{Video: newVideoItem(video, creator)}
	if creator != nil {
		detail.Channel = newChannelProfile(creator)
	}
	return detail, nil
}

// ChannelPage 频道页
type ChannelPage struct {
	Channel *ChannelProfile `json:"channel"`
	Videos  []*VideoItem    `json:"videos"`
}

// GetChannel 按用户名获取频道; 本人访问时包含草稿和私有视频
func (s *VideoService) GetChannel(ctx context.Context, sess session.Session, username string) (*ChannelPage, error) {
	profile, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetProfileByUsername failed")
	}
	videos, err := s.store.ListChannelVideos(ctx, profile.ID, sess.UserID == profile.ID, s.maxLimit)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListChannelVideos failed")
	}
	s.overlayProfileCounters(ctx, profile)

	page := &ChannelPage{Channel: newChannelProfile(profile), Videos: make([]*VideoItem, 0, len(videos))}
	for _, v := range videos {
		page.Videos = append(page.Videos, newVideoItem(v, profile))
	}
	return page, nil
}
