package redis

import (
	"context"

	"VidHub.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func Load() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       config.ConfigInfo.Redis.DB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		hlog.Warnf("redis %s unreachable, cache and view limiter degrade: %v", config.ConfigInfo.Redis.Addr, err)
	}
}
