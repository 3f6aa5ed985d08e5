package handlers

import (
	"context"

	interaction "VidHub.com/cmd/interaction/service"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
)

func (h *Handler) CreateComment(ctx context.Context, c *app.RequestContext) {
	var param CommentParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	resp, err := h.Comments.CreateComment(ctx, session.FromContext(ctx), &interaction.CreateCommentRequest{
		VideoID:  c.Param("id"),
		Content:  param.Content,
		ParentID: param.ParentID,
	})
	if err != nil {
		logErr(ctx, "CreateComment", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func (h *Handler) ListComments(ctx context.Context, c *app.RequestContext) {
	resp, err := h.Videos.ListTopLevelComments(ctx, session.FromContext(ctx), c.Param("id"))
	if err != nil {
		logErr(ctx, "ListComments", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func (h *Handler) ListReplies(ctx context.Context, c *app.RequestContext) {
	resp, err := h.Videos.ListReplies(ctx, session.FromContext(ctx), c.Param("id"))
	if err != nil {
		logErr(ctx, "ListReplies", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
