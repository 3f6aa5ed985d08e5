package handlers

import (
	"context"

	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

// ConsistencyReport 对账报告
func (h *Handler) ConsistencyReport(ctx context.Context, c *app.RequestContext) {
	var param ReportParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	resp, err := h.Consistency.GetConsistencyReport(ctx, param.Hours)
	if err != nil {
		logErr(ctx, "ConsistencyReport", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

// ManualCheck 立即对账指定资源
func (h *Handler) ManualCheck(ctx context.Context, c *app.RequestContext) {
	var param ManualCheckParam
	if err := c.Bind(&param); err != nil {
		SendResponse(c, errno.RequestErr.WithMessage(err.Error()), nil)
		return
	}
	if h.Health != nil && h.Health.ReadOnly() {
		SendResponse(c, errno.ReadOnlyErr, nil)
		return
	}
	resp, err := h.Consistency.ManualCheck(ctx, param.ResourceType, param.ResourceID)
	if err != nil {
		logErr(ctx, "ManualCheck", err)
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
