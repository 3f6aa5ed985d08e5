package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
)

// GetComment 获取单条评论
func (s *Store) GetComment(ctx context.Context, commentID string) (*model.Comment, error) {
	comment := &model.Comment{}
	if err := s.db.WithContext(ctx).Where("id = ?", commentID).Take(comment).Error; err != nil {
		return nil, database.TranslateErr(err, "get comment %s", commentID)
	}
	return comment, nil
}

// ListTopLevelComments 顶层评论, 最新在前
func (s *Store) ListTopLevelComments(ctx context.Context, videoID string, limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	if err := s.db.WithContext(ctx).
		Where("video_id = ? AND parent_id IS NULL", videoID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, database.TranslateErr(err, "list comments of %s", videoID)
	}
	return comments, nil
}

// ListReplies 某条评论的回复, 最早在前
func (s *Store) ListReplies(ctx context.Context, commentID string, limit int) ([]*model.Comment, error) {
	var replies []*model.Comment
	if err := s.db.WithContext(ctx).
		Where("parent_id = ?", commentID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&replies).Error; err != nil {
		return nil, database.TranslateErr(err, "list replies of %s", commentID)
	}
	return replies, nil
}
