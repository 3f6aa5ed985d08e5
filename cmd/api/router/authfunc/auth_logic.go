package authfunc

import (
	"context"

	"VidHub.com/cmd/api/handlers"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Session 解析 Bearer 令牌并把会话放入 ctx; 没有令牌时为匿名会话, 令牌无效时直接拒绝
func Session(tm *session.TokenManager) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token, ok := session.BearerToken(string(c.GetHeader("Authorization")))
		if !ok || !tm.Enabled() {
			c.Next(session.NewContext(ctx, session.Anonymous))
			return
		}
		sess, err := tm.Parse(token)
		if err != nil {
			hlog.CtxInfof(ctx, "reject request with invalid token: %v", err)
			handlers.SendResponse(c, err, nil)
			c.Abort()
			return
		}
		c.Next(session.NewContext(ctx, sess))
	}
}

// Auth 需要登录的路由
func Auth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		RequireLogin(),
	)
}

// Admin 需要管理员角色的路由
func Admin() []app.HandlerFunc {
	return append(Auth(),
		RequireAdmin(),
	)
}

func RequireLogin() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if session.FromContext(ctx).IsAnonymous() {
			handlers.SendResponse(c, errno.UnauthorizedErr, nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}

func RequireAdmin() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		sess := session.FromContext(ctx)
		if !sess.IsAdmin() {
			hlog.CtxInfof(ctx, "user %s denied admin route %s", sess.UserID, c.Path())
			handlers.SendResponse(c, errno.ForbiddenErr, nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
