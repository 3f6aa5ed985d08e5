package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/constants"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type CommentService struct {
	*Deps
}

func NewCommentService(deps *Deps) *CommentService {
	return &CommentService{Deps: deps}
}

// CreateCommentRequest 发表评论或回复
type CreateCommentRequest struct {
	VideoID  string
	Content  string
	ParentID string
}

// validateCommentContent 去除首尾空白后校验
func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errno.ValidationErr.WithMessage("Comment content cannot be empty")
	}
	if utf8.RuneCountInString(content) > constants.CommentMaxLength {
		return "", errno.ValidationErr.WithMessage("Comment too long")
	}
	return content, nil
}

// CreateComment 插入评论并使 comment_count +1
func (s *CommentService) CreateComment(ctx context.Context, sess session.Session, req *CreateCommentRequest) (*model.Comment, error) {
	if sess.IsAnonymous() {
		return nil, errors.WithStack(errno.UnauthorizedErr)
	}
	content, err := validateCommentContent(req.Content)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if _, err := s.visibleVideo(ctx, sess, req.VideoID); err != nil {
		return nil, errors.WithMessage(err, "create comment")
	}

	comment := &model.Comment{
		ID:      uuid.New().String(),
		VideoID: req.VideoID,
		UserID:  sess.UserID,
		Content: content,
	}
	if parentID := strings.TrimSpace(req.ParentID); parentID != "" {
		parent, err := s.Store.GetComment(ctx, parentID)
		if err != nil {
			return nil, errors.WithMessage(err, "get parent comment")
		}
		if parent.VideoID != req.VideoID {
			return nil, errors.WithStack(errno.ValidationErr.WithMessage("parent comment belongs to another video"))
		}
		comment.ParentID = &parentID
	}

	count, err := s.Store.ApplyComment(ctx, comment)
	if err != nil {
		return nil, errors.WithMessage(err, "apply comment")
	}

	s.afterComment(ctx, comment, count)
	return comment, nil
}

func (s *CommentService) afterComment(ctx context.Context, comment *model.Comment, count int64) {
	if s.Cache != nil {
		if err := s.Cache.SetVideoCounters(ctx, comment.VideoID, map[engagement.Counter]int64{engagement.CounterComments: count}); err != nil {
			hlog.CtxWarnf(ctx, "write-through comment_count of %s failed: %v", comment.VideoID, err)
		}
	}
	if s.Dirty != nil {
		if err := s.Dirty.MarkVideo(ctx, comment.VideoID); err != nil {
			hlog.CtxWarnf(ctx, "mark video %s dirty failed: %v", comment.VideoID, err)
		}
	}
	if s.Comments != nil {
		if err := s.Comments.InvalidateVideoComments(ctx, comment.VideoID); err != nil {
			hlog.CtxWarnf(ctx, "invalidate comment cache of %s failed: %v", comment.VideoID, err)
		}
	}
	parentID := ""
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}
	event := mq.NewCommentEvent(comment.ID, comment.VideoID, comment.UserID, parentID, count)
	if err := s.producer().PublishCommentEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "publish comment event failed: %v", err)
	}
}
