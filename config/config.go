package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

// 默认配置路径, 兼容从仓库根目录和 cmd/<service> 目录启动
var configPaths = []string{
	"../../../config",
	"../../config",
	"./config",
	"../config",
	".",
}

// Init 读取 config.yml, 未找到配置文件时使用默认值并允许环境变量覆盖 (VIDHUB_REDIS_ADDR 等)
func Init() {
	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yml")
	setDefaults()

	viper.SetEnvPrefix("vidhub")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, path := range configPaths {
		viper.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", viper.ConfigFileUsed())
	}

	load()

	logrus.Infof("Config loaded - database: %s %s:%s@%s/%s",
		ConfigInfo.Database.Driver, ConfigInfo.Database.Username, "***", ConfigInfo.Database.Addr, ConfigInfo.Database.Database)
	logrus.Infof("Config loaded - redis: %s db=%d, rabbitmq: %s",
		ConfigInfo.Redis.Addr, ConfigInfo.Redis.DB, ConfigInfo.RabbitMq.Addr)

	if ConfigInfo.Jwt.Secret == "" {
		logrus.Warn("No jwt secret configured, every request will be treated as anonymous!")
	}
}

func setDefaults() {
	viper.SetDefault("server.addr", "0.0.0.0:8888")
	viper.SetDefault("server.allow_origins", []string{"http://localhost:8080"})

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.addr", "127.0.0.1:3306")
	viper.SetDefault("database.database", "vidhub")
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("database.path", "vidhub.db")
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", "1h")

	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("rabbitmq.addr", "127.0.0.1:5672")
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")

	viper.SetDefault("jwt.issuer", "vidhub")

	viper.SetDefault("engagement.view_session_window", "30m")
	viper.SetDefault("engagement.lock_enabled", true)
	viper.SetDefault("engagement.lock_expiry", "5s")
	viper.SetDefault("engagement.counter_cache_ttl", "24h")
	viper.SetDefault("engagement.feed_default_limit", 24)
	viper.SetDefault("engagement.feed_max_limit", 100)

	viper.SetDefault("reconcile.interval", "5m")
	viper.SetDefault("reconcile.batch_size", 100)
	viper.SetDefault("reconcile.active_window", "24h")
	viper.SetDefault("reconcile.retention_days", 7)
	viper.SetDefault("reconcile.health_interval", "10s")

	viper.SetDefault("sentinel.write_qps", 200)
}

// 手动从viper获取配置值, 与历史配置文件保持兼容
func load() {
	ConfigInfo.Server.Addr = viper.GetString("server.addr")
	ConfigInfo.Server.AllowOrigins = viper.GetStringSlice("server.allow_origins")
	ConfigInfo.Server.PprofAddr = viper.GetString("server.pprof_addr")

	ConfigInfo.Database.Driver = viper.GetString("database.driver")
	ConfigInfo.Database.Addr = viper.GetString("database.addr")
	ConfigInfo.Database.Database = viper.GetString("database.database")
	ConfigInfo.Database.Username = viper.GetString("database.username")
	ConfigInfo.Database.Password = viper.GetString("database.password")
	ConfigInfo.Database.Charset = viper.GetString("database.charset")
	ConfigInfo.Database.Path = viper.GetString("database.path")
	ConfigInfo.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	ConfigInfo.Database.MaxIdleConns = viper.GetInt("database.max_idle_conns")
	ConfigInfo.Database.ConnMaxLifetime = viper.GetString("database.conn_max_lifetime")

	ConfigInfo.Redis.Addr = viper.GetString("redis.addr")
	ConfigInfo.Redis.Password = viper.GetString("redis.password")
	ConfigInfo.Redis.DB = viper.GetInt("redis.db")

	ConfigInfo.RabbitMq.Addr = viper.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = viper.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = viper.GetString("rabbitmq.password")

	ConfigInfo.Jwt.Secret = viper.GetString("jwt.secret")
	ConfigInfo.Jwt.Issuer = viper.GetString("jwt.issuer")

	ConfigInfo.Engagement.ViewSessionWindow = viper.GetString("engagement.view_session_window")
	ConfigInfo.Engagement.LockEnabled = viper.GetBool("engagement.lock_enabled")
	ConfigInfo.Engagement.LockExpiry = viper.GetString("engagement.lock_expiry")
	ConfigInfo.Engagement.CounterCacheTTL = viper.GetString("engagement.counter_cache_ttl")
	ConfigInfo.Engagement.FeedDefaultLimit = viper.GetInt("engagement.feed_default_limit")
	ConfigInfo.Engagement.FeedMaxLimit = viper.GetInt("engagement.feed_max_limit")

	ConfigInfo.Reconcile.Interval = viper.GetString("reconcile.interval")
	ConfigInfo.Reconcile.BatchSize = viper.GetInt("reconcile.batch_size")
	ConfigInfo.Reconcile.ActiveWindow = viper.GetString("reconcile.active_window")
	ConfigInfo.Reconcile.RetentionDays = viper.GetInt("reconcile.retention_days")
	ConfigInfo.Reconcile.HealthInterval = viper.GetString("reconcile.health_interval")

	ConfigInfo.Sentinel.WriteQPS = viper.GetFloat64("sentinel.write_qps")
}

// RabbitMqURL 拼接 amqp 连接串, 环境变量 RABBITMQ_URL 优先
func RabbitMqURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("amqp://%s:%s@%s/", ConfigInfo.RabbitMq.Username, ConfigInfo.RabbitMq.Password, ConfigInfo.RabbitMq.Addr)
}

// Duration 解析配置中的时间字符串, 解析失败时回退到 fallback
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		if value != "" {
			logrus.Warnf("invalid duration %q, fallback to %v", value, fallback)
		}
		return fallback
	}
	return d
}
