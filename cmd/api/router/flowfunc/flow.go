package flowfunc

import (
	"context"

	"VidHub.com/cmd/api/handlers"
	"VidHub.com/pkg/errno"
	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// WriteResource 所有写接口共享的限流资源名
const WriteResource = "vidhub:write"

var TooManyRequestsErr = errno.RequestErr.WithMessage("Too many requests, please retry later")

// Init 初始化 sentinel 并为写接口加载 QPS 规则, qps <= 0 时不限流
func Init(qps float64) error {
	if qps <= 0 {
		return nil
	}
	if err := sentinel.InitDefault(); err != nil {
		return err
	}
	_, err := flow.LoadRules([]*flow.Rule{
		{
			Resource:               WriteResource,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              qps,
			StatIntervalInMs:       1000,
		},
	})
	if err != nil {
		return err
	}
	hlog.Infof("sentinel flow rule loaded: %s qps=%v", WriteResource, qps)
	return nil
}

// Limit 写接口限流, 被拒绝时返回 RequestErr
func Limit(resource string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			hlog.CtxWarnf(ctx, "request blocked by sentinel: %s %v", resource, b.BlockType())
			handlers.SendResponse(c, TooManyRequestsErr, nil)
			c.Abort()
			return
		}
		defer e.Exit()
		c.Next(ctx)
	}
}
