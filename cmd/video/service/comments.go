package service

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// CommentItem 评论及作者信息
type CommentItem struct {
	ID        string         `json:"id"`
	VideoID   string         `json:"video_id"`
	ParentID  string         `json:"parent_id,omitempty"`
	Content   string         `json:"content"`
	LikeCount int64          `json:"like_count"`
	CreatedAt int64          `json:"created_at"`
	Author    CreatorSummary `json:"author"`
}

// ListTopLevelComments 顶层评论, 最新在前
func (s *VideoService) ListTopLevelComments(ctx context.Context, sess session.Session, videoID string) ([]*CommentItem, error) {
	if err := s.checkVisible(ctx, sess, videoID); err != nil {
		return nil, err
	}

	var items []*CommentItem
	if s.comments != nil {
		found, err := s.comments.GetCachedTopLevel(ctx, videoID, &items)
		if err != nil {
			hlog.CtxWarnf(ctx, "read comment cache of %s failed: %v", videoID, err)
		} else if found {
			return items, nil
		}
	}

	comments, err := s.store.ListTopLevelComments(ctx, videoID, s.maxLimit)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListTopLevelComments failed")
	}
	if items, err = s.withAuthors(ctx, comments); err != nil {
		return nil, err
	}

	if s.comments != nil {
		if err := s.comments.CacheTopLevel(ctx, videoID, items); err != nil {
			hlog.CtxWarnf(ctx, "write comment cache of %s failed: %v", videoID, err)
		}
	}
	return items, nil
}

// ListReplies 回复列表, 最早在前
func (s *VideoService) ListReplies(ctx context.Context, sess session.Session, commentID string) ([]*CommentItem, error) {
	parent, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetComment failed")
	}
	if err := s.checkVisible(ctx, sess, parent.VideoID); err != nil {
		return nil, err
	}

	var items []*CommentItem
	if s.comments != nil {
		found, err := s.comments.GetCachedReplies(ctx, parent.VideoID, commentID, &items)
		if err != nil {
			hlog.CtxWarnf(ctx, "read reply cache of %s failed: %v", commentID, err)
		} else if found {
			return items, nil
		}
	}

	replies, err := s.store.ListReplies(ctx, commentID, s.maxLimit)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListReplies failed")
	}
	if items, err = s.withAuthors(ctx, replies); err != nil {
		return nil, err
	}

	if s.comments != nil {
		if err := s.comments.CacheReplies(ctx, parent.VideoID, commentID, items); err != nil {
			hlog.CtxWarnf(ctx, "write reply cache of %s failed: %v", commentID, err)
		}
	}
	return items, nil
}

func (s *VideoService) checkVisible(ctx context.Context, sess session.Session, videoID string) error {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return errors.WithMessage(err, "dao.GetVideo failed")
	}
	if !video.VisibleTo(sess.UserID) {
		return errors.WithStack(errno.NotFoundErr.WithMessage("video " + videoID + " not found"))
	}
	return nil
}

func (s *VideoService) withAuthors(ctx context.Context, comments []*model.Comment) ([]*CommentItem, error) {
	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.store.GetProfilesByIDs(ctx, authorIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetProfilesByIDs failed")
	}

	items := make([]*CommentItem, 0, len(comments))
	for _, c := range comments {
		item := &CommentItem{
			ID:        c.ID,
			VideoID:   c.VideoID,
			Content:   c.Content,
			LikeCount: c.LikeCount,
			CreatedAt: c.CreatedAt.Unix(),
			Author:    newCreatorSummary(c.UserID, authors[c.UserID]),
		}
		if c.ParentID != nil {
			item.ParentID = *c.ParentID
		}
		items = append(items, item)
	}
	return items, nil
}
