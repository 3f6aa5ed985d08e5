package router

import (
	"VidHub.com/cmd/api/handlers"
	"VidHub.com/cmd/api/router/authfunc"
	"VidHub.com/cmd/api/router/flowfunc"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

// Options 路由配置
type Options struct {
	Tokens *session.TokenManager
	// 写接口限流, 为 false 时不挂载 sentinel
	LimitWrites bool
}

// Register 注册全部 HTTP 路由
func Register(r *server.Hertz, h *handlers.Handler, opts Options) {
	r.GET("/healthz", h.HealthCheck)

	api := r.Group("/api/v1", authfunc.Session(opts.Tokens))

	write := func(handler app.HandlerFunc) []app.HandlerFunc {
		chain := make([]app.HandlerFunc, 0, 2)
		if opts.LimitWrites {
			chain = append(chain, flowfunc.Limit(flowfunc.WriteResource))
		}
		return append(chain, handler)
	}

	videos := api.Group("/videos")
	videos.GET("", h.ListVideos)
	videos.POST("", write(h.CreateVideo)...)
	videos.GET("/:id", h.GetVideo)
	videos.GET("/:id/engagement", h.GetEngagementState)
	videos.POST("/:id/vote", write(h.Vote)...)
	videos.POST("/:id/views", write(h.RecordView)...)
	videos.GET("/:id/comments", h.ListComments)
	videos.POST("/:id/comments", write(h.CreateComment)...)

	api.GET("/comments/:id/replies", h.ListReplies)

	api.GET("/channels/:username", h.GetChannel)
	api.POST("/subscriptions/:id", write(h.Subscribe)...)
	api.DELETE("/subscriptions/:id", write(h.Unsubscribe)...)

	admin := api.Group("/admin", authfunc.Admin()...)
	admin.GET("/consistency/report", h.ConsistencyReport)
	admin.POST("/consistency/check", h.ManualCheck)
}
