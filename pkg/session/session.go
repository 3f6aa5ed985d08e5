package session

import (
	"context"
	"strings"
)

// Session 当前调用者身份, 由 API 中间件解析后显式传给各个服务
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// RoleAdmin 可访问 /admin 路由
const RoleAdmin = "admin"

// Anonymous 空会话
var Anonymous = Session{}

func (s Session) IsAnonymous() bool {
	return strings.TrimSpace(s.UserID) == ""
}

func (s Session) IsAdmin() bool {
	return !s.IsAnonymous() && s.Role == RoleAdmin
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 取出会话, 不存在时返回匿名会话
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Anonymous
}
