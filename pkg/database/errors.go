package database

import (
	"fmt"

	"VidHub.com/pkg/errno"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TranslateErr 将存储层错误映射为业务错误码
// 记录不存在 -> NotFoundErr, 唯一键冲突 -> ConflictErr, 其余 (超时/连接失败) -> TransientStoreErr
func TranslateErr(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var e errno.ErrNo
	if errors.As(err, &e) {
		return errors.WithMessage(err, msg)
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.WithStack(errno.NotFoundErr.WithMessage(msg + ": not found"))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.WithStack(errno.ConflictErr.WithMessage(msg + ": duplicate key"))
	}
	return errors.WithStack(errno.TransientStoreErr.WithMessage(msg + ": " + err.Error()))
}
