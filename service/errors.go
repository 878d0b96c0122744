package service

import (
	"errors"

	"gorm.io/gorm"
)

// 错误分类，HTTP 层用 errors.Is 映射状态码
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error 带具体提示的分类错误
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// notFoundOr gorm 未找到转成 ErrNotFound，其他错误原样返回
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newErr(ErrNotFound, msg)
	}
	return err
}
