package db

import (
	"context"
	"time"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"gorm.io/gorm"
)

// AppendWatchHistory 追加观看记录
func (s *Store) AppendWatchHistory(ctx context.Context, userID, videoID string, watchTime int64) error {
	return appendWatchHistory(s.db.WithContext(ctx), userID, videoID, watchTime)
}

func appendWatchHistory(tx *gorm.DB, userID, videoID string, watchTime int64) error {
	h := &model.WatchHistory{UserID: userID, VideoID: videoID, WatchTime: watchTime, WatchedAt: time.Now()}
	if err := tx.Create(h).Error; err != nil {
		return database.TranslateErr(err, "append watch history %s/%s", userID, videoID)
	}
	return nil
}

// ApplyView 一次有效播放: view_count +1, 作者 total_views +1, 登录用户追加观看记录
func (s *Store) ApplyView(ctx context.Context, viewerID string, video *model.Video, watchTime int64) (int64, error) {
	var views int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := incrementCounter(tx, &model.Video{}, video.ID, engagement.CounterViews, 1)
		if err != nil {
			return err
		}
		views = v
		if _, err := incrementCounter(tx, &model.Profile{}, video.CreatorID, engagement.CounterTotalViews, 1); err != nil {
			return err
		}
		if viewerID != "" {
			return appendWatchHistory(tx, viewerID, video.ID, watchTime)
		}
		return nil
	})
	return views, err
}

// ListWatchHistory 最近的观看记录
func (s *Store) ListWatchHistory(ctx context.Context, userID string, limit int) ([]model.WatchHistory, error) {
	var list []model.WatchHistory
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("watched_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, database.TranslateErr(err, "list watch history of %s", userID)
	}
	return list, nil
}
