package handlers

import (
	"context"
	"strings"

	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
)

// Vote 点赞/点踩, 重复同一意图即取消
func (h *Handler) Vote(ctx context.Context, c *app.RequestContext) {
	var param VoteParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	// 意图合法性由服务在鉴权之后校验
	intent := engagement.Intent(strings.ToLower(strings.TrimSpace(param.Intent)))
	resp, err := h.Votes.Vote(ctx, session.FromContext(ctx), c.Param("id"), intent)
	if err != nil {
		logErr(ctx, "Vote", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

// EngagementStateResponse 当前用户对视频的投票状态
type EngagementStateResponse struct {
	State engagement.State `json:"state"`
}

func (h *Handler) GetEngagementState(ctx context.Context, c *app.RequestContext) {
	state, err := h.Votes.GetState(ctx, session.FromContext(ctx), c.Param("id"))
	if err != nil {
		logErr(ctx, "GetEngagementState", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, &EngagementStateResponse{State: state})
}
