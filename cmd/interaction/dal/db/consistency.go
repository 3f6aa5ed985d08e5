package db

import (
	"context"
	"time"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterDrift 一次对账中单个计数的存储值与重算值
type CounterDrift struct {
	Counter  engagement.Counter `json:"counter"`
	Stored   int64              `json:"stored"`
	Computed int64              `json:"computed"`
}

func (d CounterDrift) Consistent() bool {
	return d.Stored == d.Computed
}

// ReconcileVideo 从行数据重算点赞/点踩/评论数, fix 为 true 时在同一事务内写回修正值
func (s *Store) ReconcileVideo(ctx context.Context, videoID string, fix bool) ([]CounterDrift, error) {
	var drifts []CounterDrift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住视频行, 对账期间的计数更新需等待提交
		var video model.Video
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "like_count", "dislike_count", "comment_count").
			Where("id = ?", videoID).Take(&video).Error; err != nil {
			return database.TranslateErr(err, "reconcile video %s", videoID)
		}

		var likes, dislikes, comments int64
		if err := tx.Model(&model.VideoLike{}).Where("video_id = ? AND is_like = ?", videoID, true).Count(&likes).Error; err != nil {
			return database.TranslateErr(err, "count likes of %s", videoID)
		}
		if err := tx.Model(&model.VideoLike{}).Where("video_id = ? AND is_like = ?", videoID, false).Count(&dislikes).Error; err != nil {
			return database.TranslateErr(err, "count dislikes of %s", videoID)
		}
		if err := tx.Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&comments).Error; err != nil {
			return database.TranslateErr(err, "count comments of %s", videoID)
		}

		drifts = []CounterDrift{
			{Counter: engagement.CounterLikes, Stored: video.LikeCount, Computed: likes},
			{Counter: engagement.CounterDislikes, Stored: video.DislikeCount, Computed: dislikes},
			{Counter: engagement.CounterComments, Stored: video.CommentCount, Computed: comments},
		}
		if !fix {
			return nil
		}
		updates := map[string]interface{}{}
		for _, d := range drifts {
			if !d.Consistent() {
				updates[string(d.Counter)] = d.Computed
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&model.Video{}).Where("id = ?", videoID).UpdateColumns(updates).Error; err != nil {
			return database.TranslateErr(err, "fix counters of %s", videoID)
		}
		return nil
	})
	return drifts, err
}

// ReconcileChannel 从订阅表重算 subscriber_count
func (s *Store) ReconcileChannel(ctx context.Context, channelID string, fix bool) (CounterDrift, error) {
	drift := CounterDrift{Counter: engagement.CounterSubscribers}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "subscriber_count").Where("id = ?", channelID).Take(&profile).Error; err != nil {
			return database.TranslateErr(err, "reconcile channel %s", channelID)
		}
		var count int64
		if err := tx.Model(&model.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error; err != nil {
			return database.TranslateErr(err, "count subscribers of %s", channelID)
		}
		drift.Stored, drift.Computed = profile.SubscriberCount, count
		if !fix || drift.Consistent() {
			return nil
		}
		if err := tx.Model(&model.Profile{}).Where("id = ?", channelID).
			UpdateColumn(string(engagement.CounterSubscribers), count).Error; err != nil {
			return database.TranslateErr(err, "fix subscriber_count of %s", channelID)
		}
		return nil
	})
	return drift, err
}

// ListActiveVideoIDs 最近有投票或评论的视频
func (s *Store) ListActiveVideoIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	var voted, commented []string
	if err := s.db.WithContext(ctx).Model(&model.VideoLike{}).
		Where("updated_at > ?", since).Distinct().Limit(limit).
		Pluck("video_id", &voted).Error; err != nil {
		return nil, database.TranslateErr(err, "list active voted videos")
	}
	if err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("created_at > ?", since).Distinct().Limit(limit).
		Pluck("video_id", &commented).Error; err != nil {
		return nil, database.TranslateErr(err, "list active commented videos")
	}

	seen := make(map[string]struct{}, len(voted)+len(commented))
	ids := make([]string, 0, len(voted)+len(commented))
	for _, id := range append(voted, commented...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// SaveConsistencyChecks 保存对账记录
func (s *Store) SaveConsistencyChecks(ctx context.Context, checks []model.DataConsistencyCheck) error {
	if len(checks) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&checks).Error; err != nil {
		return database.TranslateErr(err, "save consistency checks")
	}
	return nil
}

// ListConsistencyChecks 指定时间之后的对账记录
func (s *Store) ListConsistencyChecks(ctx context.Context, since time.Time) ([]model.DataConsistencyCheck, error) {
	var checks []model.DataConsistencyCheck
	if err := s.db.WithContext(ctx).Where("check_time > ?", since).Order("check_time DESC").Find(&checks).Error; err != nil {
		return nil, database.TranslateErr(err, "list consistency checks")
	}
	return checks, nil
}

// DeleteConsistencyChecksBefore 清理旧的检查记录
func (s *Store) DeleteConsistencyChecksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.DataConsistencyCheck{})
	if res.Error != nil {
		return 0, database.TranslateErr(res.Error, "cleanup consistency checks")
	}
	return res.RowsAffected, nil
}
