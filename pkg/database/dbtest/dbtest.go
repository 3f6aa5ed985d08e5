package dbtest

import (
	"path/filepath"
	"testing"

	"VidHub.com/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New 在临时目录创建已迁移的 sqlite 数据库
func New(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vidhub_test.db")
	db, err := database.Open(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      database.SQLiteDSN(path),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
