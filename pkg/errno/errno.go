package errno

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	SuccessCode           = 0
	ServiceErrCode        = 10001
	RequestErrCode        = 10002
	UnauthorizedErrCode   = 10401
	ForbiddenErrCode      = 10403
	NotFoundErrCode       = 10404
	ConflictErrCode       = 10409
	ValidationErrCode     = 10422
	ReadOnlyErrCode       = 10423
	TransientStoreErrCode = 10503
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

// Is 按错误码比较, WithMessage 派生出的错误与原值相等
func (e ErrNo) Is(target error) bool {
	t, ok := target.(ErrNo)
	if !ok {
		return false
	}
	return e.ErrCode == t.ErrCode
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success           = NewErrNo(SuccessCode, "Success")
	ServiceErr        = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	RequestErr        = NewErrNo(RequestErrCode, "Request parameter error")
	UnauthorizedErr   = NewErrNo(UnauthorizedErrCode, "Sign in to continue")
	ForbiddenErr      = NewErrNo(ForbiddenErrCode, "Permission denied")
	NotFoundErr       = NewErrNo(NotFoundErrCode, "Resource not found")
	ConflictErr       = NewErrNo(ConflictErrCode, "Resource already exists")
	ValidationErr     = NewErrNo(ValidationErrCode, "Validation failed")
	ReadOnlyErr       = NewErrNo(ReadOnlyErrCode, "Store unavailable, writes are disabled")
	TransientStoreErr = NewErrNo(TransientStoreErrCode, "Store request failed, please retry")
)

// ConvertErr 将任意错误转换为 ErrNo, 未知错误归为 ServiceErr
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	var e ErrNo
	if errors.As(err, &e) {
		return e
	}
	s := ServiceErr
	s.ErrMsg = err.Error()
	return s
}

// Is 判断 err 链上是否存在指定错误码
func Is(err error, target ErrNo) bool {
	return errors.Is(err, target)
}
