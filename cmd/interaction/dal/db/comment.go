package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"gorm.io/gorm"
)

// CreateComment 仅插入评论
func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return database.TranslateErr(err, "create comment on %s", comment.VideoID)
	}
	return nil
}

// GetComment 获取某一条评论的全部信息
func (s *Store) GetComment(ctx context.Context, commentID string) (*model.Comment, error) {
	comment := &model.Comment{}
	if err := s.db.WithContext(ctx).Where("id = ?", commentID).Take(comment).Error; err != nil {
		return nil, database.TranslateErr(err, "get comment %s", commentID)
	}
	return comment, nil
}

// ApplyComment 插入评论并使 comment_count +1, 返回新的评论数
func (s *Store) ApplyComment(ctx context.Context, comment *model.Comment) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return database.TranslateErr(err, "create comment on %s", comment.VideoID)
		}
		v, err := incrementCounter(tx, &model.Video{}, comment.VideoID, engagement.CounterComments, 1)
		if err != nil {
			return err
		}
		count = v
		return nil
	})
	return count, err
}
