package service

import (
	"context"
	"strings"
	"time"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CreateVideoRequest 发布视频的元数据, 文件本身已由客户端上传
type CreateVideoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	VideoUrl     string `json:"video_url"`
	ThumbnailUrl string `json:"thumbnail_url"`
	Duration     int64  `json:"duration"`
	Tags         string `json:"tags"`
}

func validCategory(category string) bool {
	for _, c := range constants.VideoCategories {
		if c == category {
			return true
		}
	}
	return false
}

func validStatus(status string) bool {
	switch status {
	case constants.VideoStatusDraft, constants.VideoStatusPublished, constants.VideoStatusPrivate:
		return true
	}
	return false
}

// normalizeTags 逗号拆分并去除空白
func normalizeTags(tags string) string {
	parts := strings.Split(tags, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ",")
}

// CreateVideo 校验并保存视频元数据, 计数从 0 开始
func (s *VideoService) CreateVideo(ctx context.Context, sess session.Session, req *CreateVideoRequest) (*VideoItem, error) {
	if sess.IsAnonymous() {
		return nil, errors.WithStack(errno.UnauthorizedErr)
	}

	title := strings.TrimSpace(req.Title)
	videoUrl := strings.TrimSpace(req.VideoUrl)
	if title == "" {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("Title is required"))
	}
	if videoUrl == "" {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("Video url is required"))
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = constants.DefaultCategory
	}
	if !validCategory(category) {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("Unknown category " + category))
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = constants.VideoStatusPublished
	}
	if !validStatus(status) {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("Unknown status " + status))
	}
	if req.Duration < 0 {
		return nil, errors.WithStack(errno.ValidationErr.WithMessage("Duration must not be negative"))
	}

	creator, err := s.store.GetProfile(ctx, sess.UserID)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetProfile failed")
	}

	now := time.Now()
	video := &model.Video{
		ID:           uuid.New().String(),
		CreatorID:    sess.UserID,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Category:     category,
		Status:       status,
		VideoUrl:     videoUrl,
		ThumbnailUrl: strings.TrimSpace(req.ThumbnailUrl),
		Duration:     req.Duration,
		Tags:         normalizeTags(req.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateVideo(ctx, video); err != nil {
		return nil, errors.WithMessage(err, "dao.CreateVideo failed")
	}
	hlog.CtxInfof(ctx, "video %s created by %s, status=%s", video.ID, sess.UserID, status)
	return newVideoItem(video, creator), nil
}
