package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetVideo 获取视频
func (s *Store) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	video := &model.Video{}
	if err := s.db.WithContext(ctx).Where("id = ?", videoID).Take(video).Error; err != nil {
		return nil, database.TranslateErr(err, "get video %s", videoID)
	}
	return video, nil
}

// GetVideoLike 获取当前投票, 不存在时返回 nil
func (s *Store) GetVideoLike(ctx context.Context, userID, videoID string) (*model.VideoLike, error) {
	return getVideoLike(s.db.WithContext(ctx), userID, videoID)
}

func getVideoLike(tx *gorm.DB, userID, videoID string) (*model.VideoLike, error) {
	var likes []model.VideoLike
	if err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).Limit(1).Find(&likes).Error; err != nil {
		return nil, database.TranslateErr(err, "get video like %s/%s", userID, videoID)
	}
	if len(likes) == 0 {
		return nil, nil
	}
	return &likes[0], nil
}

// GetState 当前投票状态
func (s *Store) GetState(ctx context.Context, userID, videoID string) (engagement.State, error) {
	like, err := s.GetVideoLike(ctx, userID, videoID)
	if err != nil {
		return engagement.StateNone, err
	}
	if like == nil {
		return engagement.StateNone, nil
	}
	return engagement.StateOf(true, like.IsLike), nil
}

// InsertVideoLike 插入投票, 唯一键冲突时返回 ConflictErr
func (s *Store) InsertVideoLike(ctx context.Context, userID, videoID string, isLike bool) (*model.VideoLike, error) {
	return insertVideoLike(s.db.WithContext(ctx), userID, videoID, isLike)
}

func insertVideoLike(tx *gorm.DB, userID, videoID string, isLike bool) (*model.VideoLike, error) {
	like := &model.VideoLike{UserID: userID, VideoID: videoID, IsLike: isLike}
	if err := tx.Create(like).Error; err != nil {
		return nil, database.TranslateErr(err, "insert video like %s/%s", userID, videoID)
	}
	return like, nil
}

// UpdateVideoLike 翻转投票
func (s *Store) UpdateVideoLike(ctx context.Context, userID, videoID string, isLike bool) (*model.VideoLike, error) {
	if err := updateVideoLike(s.db.WithContext(ctx), userID, videoID, isLike); err != nil {
		return nil, err
	}
	return s.GetVideoLike(ctx, userID, videoID)
}

// 只在记录仍处于相反状态时更新, 否则说明读到的状态已过期
func updateVideoLike(tx *gorm.DB, userID, videoID string, isLike bool) error {
	res := tx.Model(&model.VideoLike{}).
		Where("user_id = ? AND video_id = ? AND is_like = ?", userID, videoID, !isLike).
		Update("is_like", isLike)
	if res.Error != nil {
		return database.TranslateErr(res.Error, "update video like %s/%s", userID, videoID)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(errno.ConflictErr.WithMessage("stale engagement state on update"))
	}
	return nil
}

// DeleteVideoLike 撤销投票
func (s *Store) DeleteVideoLike(ctx context.Context, userID, videoID string) error {
	return deleteVideoLike(s.db.WithContext(ctx), userID, videoID, nil)
}

func deleteVideoLike(tx *gorm.DB, userID, videoID string, isLike *bool) error {
	q := tx.Where("user_id = ? AND video_id = ?", userID, videoID)
	if isLike != nil {
		q = q.Where("is_like = ?", *isLike)
	}
	res := q.Delete(&model.VideoLike{})
	if res.Error != nil {
		return database.TranslateErr(res.Error, "delete video like %s/%s", userID, videoID)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(errno.ConflictErr.WithMessage("stale engagement state on delete"))
	}
	return nil
}

// ApplyVote 在一个事务内执行行操作与点赞/点踩计数增量, 返回提交后的计数
// 读到的状态过期 (并发首投或记录已被修改) 时返回 ConflictErr, 整个事务回滚
func (s *Store) ApplyVote(ctx context.Context, userID, videoID string, eff engagement.Effect) (engagement.Counts, error) {
	var counts engagement.Counts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch eff.Op {
		case engagement.RowInsert:
			if _, err := insertVideoLike(tx, userID, videoID, eff.IsLike); err != nil {
				return err
			}
		case engagement.RowUpdate:
			if err := updateVideoLike(tx, userID, videoID, eff.IsLike); err != nil {
				return err
			}
		case engagement.RowDelete:
			prev := eff.From == engagement.StateLiked
			if err := deleteVideoLike(tx, userID, videoID, &prev); err != nil {
				return err
			}
		}

		if !eff.Delta.IsZero() {
			if err := applyVoteDelta(tx, videoID, eff.Delta); err != nil {
				return err
			}
		}

		c, err := readVoteCounts(tx, videoID)
		if err != nil {
			return err
		}
		counts = c
		return nil
	})
	if err != nil {
		return engagement.Counts{}, err
	}
	hlog.CtxDebugf(ctx, "apply vote %s/%s %s->%s delta=%+v", userID, videoID, eff.From, eff.To, eff.Delta)
	return counts, nil
}

// 翻转时一条语句同时修改两个计数
func applyVoteDelta(tx *gorm.DB, videoID string, d engagement.Delta) error {
	updates := map[string]interface{}{}
	if d.Like != 0 {
		updates[string(engagement.CounterLikes)] = gorm.Expr(engagement.ClampExpr(engagement.CounterLikes), d.Like, d.Like)
	}
	if d.Dislike != 0 {
		updates[string(engagement.CounterDislikes)] = gorm.Expr(engagement.ClampExpr(engagement.CounterDislikes), d.Dislike, d.Dislike)
	}
	res := tx.Model(&model.Video{}).Where("id = ?", videoID).UpdateColumns(updates)
	if res.Error != nil {
		return database.TranslateErr(res.Error, "apply vote delta on %s", videoID)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(errno.NotFoundErr.WithMessage("video " + videoID + " not found"))
	}
	return nil
}

func readVoteCounts(tx *gorm.DB, videoID string) (engagement.Counts, error) {
	var v model.Video
	if err := tx.Select("like_count", "dislike_count").Where("id = ?", videoID).Take(&v).Error; err != nil {
		return engagement.Counts{}, database.TranslateErr(err, "read vote counts of %s", videoID)
	}
	return engagement.Counts{
		LikeCount:    engagement.Clamp(v.LikeCount),
		DislikeCount: engagement.Clamp(v.DislikeCount),
	}, nil
}

// GetVoteCounts 读取视频当前点赞/点踩计数
func (s *Store) GetVoteCounts(ctx context.Context, videoID string) (engagement.Counts, error) {
	return readVoteCounts(s.db.WithContext(ctx), videoID)
}
