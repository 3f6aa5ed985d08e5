package handlers

import (
	"context"

	video "VidHub.com/cmd/video/service"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
)

func (h *Handler) Subscribe(ctx context.Context, c *app.RequestContext) {
	resp, err := h.Subscriptions.Subscribe(ctx, session.FromContext(ctx), c.Param("id"))
	if err != nil {
		logErr(ctx, "Subscribe", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func (h *Handler) Unsubscribe(ctx context.Context, c *app.RequestContext) {
	resp, err := h.Subscriptions.Unsubscribe(ctx, session.FromContext(ctx), c.Param("id"))
	if err != nil {
		logErr(ctx, "Unsubscribe", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

// ChannelResponse 频道页, 附带当前用户的订阅状态
type ChannelResponse struct {
	Channel    *video.ChannelProfile `json:"channel"`
	Videos     []*video.VideoItem    `json:"videos"`
	Subscribed bool                  `json:"subscribed"`
}

func (h *Handler) GetChannel(ctx context.Context, c *app.RequestContext) {
	sess := session.FromContext(ctx)
	page, err := h.Videos.GetChannel(ctx, sess, c.Param("username"))
	if err != nil {
		logErr(ctx, "GetChannel", err)
		SendResponse(c, err, nil)
		return
	}
	subscribed, err := h.Subscriptions.IsSubscribed(ctx, sess, page.Channel.ID)
	if err != nil {
		logErr(ctx, "GetChannel", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, &ChannelResponse{Channel: page.Channel, Videos: page.Videos, Subscribed: subscribed})
}
