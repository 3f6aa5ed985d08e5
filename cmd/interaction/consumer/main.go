package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VidHub.com/cmd/interaction/dal/db"
	"VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/cmd/interaction/service"
	"VidHub.com/config"
	"VidHub.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// 对账与事件消费进程: 定期修正反范式计数, 并消费互动事件刷新缓存
func main() {
	// 初始化日志
	hlog.SetLevel(hlog.LevelInfo)

	// 初始化配置和依赖
	config.Init()
	db.Init()
	redis.Load()
	hlog.Info("Dependencies initialized successfully")

	conf := config.ConfigInfo
	counters := redis.NewCounterCache(redis.RDB, config.Duration(conf.Engagement.CounterCacheTTL, 24*time.Hour))
	dirty := redis.NewDirtySet(redis.RDB)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checker := service.NewDataConsistencyService(db.Default(), counters, dirty, service.ConsistencyOptions{
		CheckInterval: config.Duration(conf.Reconcile.Interval, 5*time.Minute),
		BatchSize:     conf.Reconcile.BatchSize,
		ActiveWindow:  config.Duration(conf.Reconcile.ActiveWindow, 24*time.Hour),
		RetentionDays: conf.Reconcile.RetentionDays,
	})
	// 启动时先跑一轮, 之后按间隔执行
	checker.RunOnce(ctx)
	if err := checker.Start(); err != nil {
		hlog.Fatalf("Failed to start consistency checker: %v", err)
	}
	defer checker.Stop()

	// RabbitMQ 不可用时只运行对账
	consumer, err := mq.NewConsumer(config.RabbitMqURL())
	if err != nil {
		hlog.Warnf("Failed to create consumer, running reconciliation only: %v", err)
	} else {
		defer consumer.Close()
		handler := service.NewEngagementEventHandler(counters, dirty)
		if err := consumer.ConsumeEvents(ctx, handler); err != nil {
			hlog.Fatalf("Failed to start engagement event consumer: %v", err)
		}
		hlog.Info("Engagement event consumer started, waiting for messages...")
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	hlog.Info("Shutting down consumer...")

	// 优雅关闭
	cancel()
	time.Sleep(2 * time.Second) // 给消费者一些时间来处理正在进行的消息

	hlog.Info("Consumer stopped")
}
