package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// IncrementVideoCounter 视频计数增量, 在零处截断, 返回新值
func (s *Store) IncrementVideoCounter(ctx context.Context, videoID string, counter engagement.Counter, delta int64) (int64, error) {
	if err := engagement.CheckVideoCounter(counter); err != nil {
		return 0, err
	}
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := incrementCounter(tx, &model.Video{}, videoID, counter, delta)
		value = v
		return err
	})
	return value, err
}

// IncrementProfileCounter 频道计数增量
func (s *Store) IncrementProfileCounter(ctx context.Context, profileID string, counter engagement.Counter, delta int64) (int64, error) {
	if err := engagement.CheckProfileCounter(counter); err != nil {
		return 0, err
	}
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := incrementCounter(tx, &model.Profile{}, profileID, counter, delta)
		value = v
		return err
	})
	return value, err
}

// counter 必须已通过白名单校验
func incrementCounter(tx *gorm.DB, table interface{}, id string, counter engagement.Counter, delta int64) (int64, error) {
	col := string(counter)
	res := tx.Model(table).Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(engagement.ClampExpr(counter), delta, delta))
	if res.Error != nil {
		return 0, database.TranslateErr(res.Error, "increment %s of %s", col, id)
	}
	if res.RowsAffected == 0 {
		return 0, errors.WithStack(errno.NotFoundErr.WithMessage(id + " not found"))
	}
	var value int64
	if err := tx.Model(table).Where("id = ?", id).Select(col).Scan(&value).Error; err != nil {
		return 0, database.TranslateErr(err, "read %s of %s", col, id)
	}
	return engagement.Clamp(value), nil
}
