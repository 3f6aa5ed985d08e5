package handlers

import (
	"context"

	interaction "VidHub.com/cmd/interaction/service"
	video "VidHub.com/cmd/video/service"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	c.JSON(consts.StatusOK, Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

// 业务错误按 Info 记录, 其余打印堆栈
func logErr(ctx context.Context, op string, err error) {
	switch errno.ConvertErr(err).ErrCode {
	case errno.ServiceErrCode, errno.TransientStoreErrCode:
		hlog.CtxErrorf(ctx, "%s failed: %v\n%+v", op, errors.Cause(err), err)
	default:
		hlog.CtxInfof(ctx, "%s rejected: %v", op, err)
	}
}

// Handler 聚合各业务服务
type Handler struct {
	Votes         *interaction.VoteService
	Comments      *interaction.CommentService
	Subscriptions *interaction.SubscriptionService
	Views         *interaction.ViewService
	Consistency   *interaction.DataConsistencyService
	Videos        *video.VideoService
	Health        database.ReadOnlyChecker
}

type FeedParam struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type VoteParam struct {
	Intent string `json:"intent" form:"intent"`
}

type CommentParam struct {
	Content  string `json:"content" form:"content"`
	ParentID string `json:"parent_id" form:"parent_id"`
}

type ViewParam struct {
	ViewerKey string `json:"viewer_key" form:"viewer_key"`
	WatchTime int64  `json:"watch_time" form:"watch_time"`
}

type ReportParam struct {
	Hours int `query:"hours"`
}

type ManualCheckParam struct {
	ResourceType string `json:"resource_type" form:"resource_type"`
	ResourceID   string `json:"resource_id" form:"resource_id"`
}

// HealthResponse 健康检查结果
type HealthResponse struct {
	ReadOnly bool `json:"read_only"`
}

func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	readOnly := h.Health != nil && h.Health.ReadOnly()
	SendResponse(c, errno.Success, &HealthResponse{ReadOnly: readOnly})
}
