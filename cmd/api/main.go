package main

import (
	"context"
	"fmt"
	"time"

	"VidHub.com/cmd/api/handlers"
	"VidHub.com/cmd/api/router"
	"VidHub.com/cmd/api/router/flowfunc"
	idb "VidHub.com/cmd/interaction/dal/db"
	"VidHub.com/cmd/interaction/infras/redis"
	interaction "VidHub.com/cmd/interaction/service"
	vdb "VidHub.com/cmd/video/dal/db"
	video "VidHub.com/cmd/video/service"
	"VidHub.com/config"
	"VidHub.com/config/pprof"
	"VidHub.com/pkg/cache"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/errno"
	"VidHub.com/pkg/mq"
	"VidHub.com/pkg/session"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
)

func Init() {
	config.Init()
	idb.Init()
	redis.Load()
	pprof.Load(config.ConfigInfo.Server.PprofAddr)
}

// 未配置或无法连接 RabbitMQ 时退化为不发布事件
func newProducer() mq.MessageProducer {
	producer, err := mq.NewProducer(config.RabbitMqURL())
	if err != nil {
		hlog.Warnf("RabbitMQ unavailable, engagement events disabled: %v", err)
		return mq.NoopProducer{}
	}
	return producer
}

func main() {
	Init()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.ConfigInfo
	prober := database.NewProber(idb.DB, config.Duration(conf.Reconcile.HealthInterval, 10*time.Second))
	go prober.Run(ctx)

	var locker *redis.VoteLocker
	if conf.Engagement.LockEnabled {
		locker = redis.NewVoteLocker(redis.RDB, config.Duration(conf.Engagement.LockExpiry, 5*time.Second))
	}
	comments := cache.NewCommentCacheManager(redis.RDB)
	counters := redis.NewCounterCache(redis.RDB, config.Duration(conf.Engagement.CounterCacheTTL, 24*time.Hour))
	dirty := redis.NewDirtySet(redis.RDB)
	producer := newProducer()
	if closer, ok := producer.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	store := idb.Default()
	deps := &interaction.Deps{
		Store:    store,
		Cache:    counters,
		Dirty:    dirty,
		Locker:   locker,
		Views:    redis.NewViewLimiter(redis.RDB, config.Duration(conf.Engagement.ViewSessionWindow, 30*time.Minute)),
		Producer: producer,
		Health:   prober,
		Comments: comments,
	}
	h := &handlers.Handler{
		Votes:         interaction.NewVoteService(deps),
		Comments:      interaction.NewCommentService(deps),
		Subscriptions: interaction.NewSubscriptionService(deps),
		Views:         interaction.NewViewService(deps),
		Consistency: interaction.NewDataConsistencyService(store, counters, dirty, interaction.ConsistencyOptions{
			BatchSize:     conf.Reconcile.BatchSize,
			RetentionDays: conf.Reconcile.RetentionDays,
		}),
		Videos: video.NewVideoService(vdb.NewStore(idb.DB), comments, counters, conf.Engagement.FeedDefaultLimit, conf.Engagement.FeedMaxLimit),
		Health: prober,
	}

	if err := flowfunc.Init(conf.Sentinel.WriteQPS); err != nil {
		hlog.Fatalf("init sentinel failed: %v", err)
	}

	r := server.New(
		server.WithHostPorts(conf.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
	)

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     conf.Server.AllowOrigins,                            // 允许的来源
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, // 允许的请求方法
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"}, // 允许的请求头
		AllowCredentials: true,                                                // 是否允许发送凭证
		MaxAge:           12 * time.Hour,                                      // 预检请求的缓存时间
	}))

	// 错误处理
	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"code":    errno.ServiceErrCode,
				"message": fmt.Sprintf("[Recovery] err=%v", err),
			})
		})))

	// 注册路由
	router.Register(r, h, router.Options{
		Tokens:      session.NewTokenManager(conf.Jwt.Secret, conf.Jwt.Issuer),
		LimitWrites: conf.Sentinel.WriteQPS > 0,
	})

	r.Spin()
}
