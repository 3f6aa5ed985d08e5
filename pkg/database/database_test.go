package database

import (
	"context"
	"path/filepath"
	"testing"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/errno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTemp(t *testing.T) *gorm.DB {
	db, err := Open(Options{
		Driver:   DriverSQLite,
		DSN:      SQLiteDSN(filepath.Join(t.TempDir(), "db.sqlite")),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateAndUniqueConstraint(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	like := &model.VideoLike{UserID: "u1", VideoID: "v1", IsLike: true}
	require.NoError(t, db.WithContext(ctx).Create(like).Error)

	err := db.WithContext(ctx).Create(&model.VideoLike{UserID: "u1", VideoID: "v1", IsLike: false}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestProber(t *testing.T) {
	db := openTemp(t)
	p := NewProber(db, 0)
	p.Probe(context.Background())
	assert.False(t, p.ReadOnly())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	p.Probe(context.Background())
	var checker ReadOnlyChecker = p
	assert.True(t, checker.ReadOnly())
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/vidhub?charset=utf8mb4&parseTime=True&loc=Local",
		MySQLDSN("root", "pw", "127.0.0.1:3306", "vidhub", ""))
	assert.Equal(t, "a.db?_busy_timeout=5000&_journal_mode=WAL", SQLiteDSN("a.db"))
}

func TestTranslateErr(t *testing.T) {
	assert.Nil(t, TranslateErr(nil, "noop"))
	assert.True(t, errno.Is(TranslateErr(gorm.ErrRecordNotFound, "get video %s", "v1"), errno.NotFoundErr))
	assert.True(t, errno.Is(TranslateErr(gorm.ErrDuplicatedKey, "insert like"), errno.ConflictErr))
	assert.True(t, errno.Is(TranslateErr(context.DeadlineExceeded, "update counter"), errno.TransientStoreErr))
	assert.True(t, errno.Is(TranslateErr(errno.ValidationErr, "create comment"), errno.ValidationErr))
}
