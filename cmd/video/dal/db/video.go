package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/database"
)

// CreateVideo 插入视频
func (s *Store) CreateVideo(ctx context.Context, video *model.Video) error {
	if err := s.db.WithContext(ctx).Create(video).Error; err != nil {
		return database.TranslateErr(err, "create video %s", video.ID)
	}
	return nil
}

// GetVideo 获取视频, 不做可见性判断
func (s *Store) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	video := &model.Video{}
	if err := s.db.WithContext(ctx).Where("id = ?", videoID).Take(video).Error; err != nil {
		return nil, database.TranslateErr(err, "get video %s", videoID)
	}
	return video, nil
}

// ListPublishedVideos 已发布视频, 按发布时间倒序
func (s *Store) ListPublishedVideos(ctx context.Context, limit, offset int) ([]*model.Video, error) {
	var videos []*model.Video
	if err := s.db.WithContext(ctx).
		Where("status = ?", constants.VideoStatusPublished).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&videos).Error; err != nil {
		return nil, database.TranslateErr(err, "list published videos")
	}
	return videos, nil
}

// ListChannelVideos 频道的视频; includeHidden 为 true 时包含草稿和私有视频
func (s *Store) ListChannelVideos(ctx context.Context, creatorID string, includeHidden bool, limit int) ([]*model.Video, error) {
	var videos []*model.Video
	query := s.db.WithContext(ctx).Where("creator_id = ?", creatorID)
	if !includeHidden {
		query = query.Where("status = ?", constants.VideoStatusPublished)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&videos).Error; err != nil {
		return nil, database.TranslateErr(err, "list videos of channel %s", creatorID)
	}
	return videos, nil
}

// GetProfile 获取频道资料
func (s *Store) GetProfile(ctx context.Context, profileID string) (*model.Profile, error) {
	profile := &model.Profile{}
	if err := s.db.WithContext(ctx).Where("id = ?", profileID).Take(profile).Error; err != nil {
		return nil, database.TranslateErr(err, "get profile %s", profileID)
	}
	return profile, nil
}

// GetProfileByUsername 按用户名获取频道
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	profile := &model.Profile{}
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(profile).Error; err != nil {
		return nil, database.TranslateErr(err, "get profile by username %s", username)
	}
	return profile, nil
}

// GetProfilesByIDs 批量获取频道资料
func (s *Store) GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*model.Profile, error) {
	result := make(map[string]*model.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var profiles []*model.Profile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, database.TranslateErr(err, "get profiles")
	}
	for _, p := range profiles {
		result[p.ID] = p
	}
	return result, nil
}
