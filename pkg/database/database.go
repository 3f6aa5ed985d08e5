package database

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"VidHub.com/cmd/model"
	"VidHub.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormopentracing "gorm.io/plugin/opentracing"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options 数据库连接配置
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// OptionsFromConfig 从全局配置生成连接参数
func OptionsFromConfig() Options {
	c := config.ConfigInfo.Database
	opts := Options{
		Driver:          strings.ToLower(c.Driver),
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: config.Duration(c.ConnMaxLifetime, time.Hour),
		LogLevel:        logger.Warn,
	}
	switch opts.Driver {
	case DriverSQLite:
		opts.DSN = SQLiteDSN(c.Path)
	default:
		opts.Driver = DriverMySQL
		opts.DSN = MySQLDSN(c.Username, c.Password, c.Addr, c.Database, c.Charset)
	}
	return opts
}

func MySQLDSN(username, password, addr, database, charset string) string {
	if charset == "" {
		charset = "utf8mb4"
	}
	return strings.Join([]string{username, ":", password, "@tcp(", addr, ")/", database,
		"?charset=", charset, "&parseTime=True&loc=Local&clientFoundRows=true"}, "")
}

func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Open 打开数据库连接并挂载 tracing 插件
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverMySQL:
		dialector = mysql.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(opts.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", opts.Driver)
	}
	if err = db.Use(gormopentracing.New()); err != nil {
		return nil, errors.Wrap(err, "use opentracing plugin")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite 单写者, 限制为单连接避免 database is locked
	if opts.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate 自动迁移全部表
func Migrate(db *gorm.DB) error {
	hlog.Info("Starting tables migration...")
	if err := db.AutoMigrate(model.Tables()...); err != nil {
		hlog.Errorf("Failed to migrate tables: %v", err)
		return err
	}
	hlog.Info("Tables migration completed successfully")
	return nil
}

// HealthCheck 健康检查
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ReadOnlyChecker 存储健康状态, 不可达时所有写操作被拒绝
type ReadOnlyChecker interface {
	ReadOnly() bool
}

var _ ReadOnlyChecker = (*Prober)(nil)

// Prober 定期探测数据库, 不可达时进入只读模式
type Prober struct {
	db       *gorm.DB
	interval time.Duration
	healthy  atomic.Bool
}

func NewProber(db *gorm.DB, interval time.Duration) *Prober {
	p := &Prober{db: db, interval: interval}
	p.healthy.Store(true)
	return p
}

// ReadOnly 存储不可达时返回 true
func (p *Prober) ReadOnly() bool {
	return !p.healthy.Load()
}

func (p *Prober) SetHealthy(ok bool) {
	if prev := p.healthy.Swap(ok); prev != ok {
		if ok {
			hlog.Info("database reachable again, leaving read-only mode")
		} else {
			hlog.Warn("database unreachable, entering read-only mode")
		}
	}
}

// Probe 执行一次探测
func (p *Prober) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	p.SetHealthy(HealthCheck(ctx, p.db) == nil)
}

// Run 阻塞运行直到 ctx 取消
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
