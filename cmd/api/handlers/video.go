package handlers

import (
	"context"

	video "VidHub.com/cmd/video/service"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
)

func (h *Handler) ListVideos(ctx context.Context, c *app.RequestContext) {
	var param FeedParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	resp, err := h.Videos.ListPublishedVideos(ctx, param.Limit, param.Offset)
	if err != nil {
		logErr(ctx, "ListVideos", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func (h *Handler) CreateVideo(ctx context.Context, c *app.RequestContext) {
	var req video.CreateVideoRequest
	if err := c.Bind(&req); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	resp, err := h.Videos.CreateVideo(ctx, session.FromContext(ctx), &req)
	if err != nil {
		logErr(ctx, "CreateVideo", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

// WatchPageResponse 播放页: 视频详情加当前用户的投票与订阅状态
type WatchPageResponse struct {
	*video.VideoDetail
	State      engagement.State `json:"state"`
	Subscribed bool             `json:"subscribed"`
}

func (h *Handler) GetVideo(ctx context.Context, c *app.RequestContext) {
	sess := session.FromContext(ctx)
	videoID := c.Param("id")
	detail, err := h.Videos.GetVideoDetail(ctx, sess, videoID)
	if err != nil {
		logErr(ctx, "GetVideo", err)
		SendResponse(c, err, nil)
		return
	}

	resp := &WatchPageResponse{VideoDetail: detail, State: engagement.StateNone}
	if resp.State, err = h.Votes.GetState(ctx, sess, videoID); err != nil {
		logErr(ctx, "GetVideo", err)
		SendResponse(c, err, nil)
		return
	}
	if detail.Channel != nil {
		if resp.Subscribed, err = h.Subscriptions.IsSubscribed(ctx, sess, detail.Channel.ID); err != nil {
			logErr(ctx, "GetVideo", err)
			SendResponse(c, err, nil)
			return
		}
	}
	SendResponse(c, errno.Success, resp)
}

func (h *Handler) RecordView(ctx context.Context, c *app.RequestContext) {
	var param ViewParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	resp, err := h.Views.RecordView(ctx, session.FromContext(ctx), c.Param("id"), param.ViewerKey, param.WatchTime)
	if err != nil {
		logErr(ctx, "RecordView", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
