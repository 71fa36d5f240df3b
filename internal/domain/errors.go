package domain

import "errors"

// 错误分类，调用方用 errors.Is 判断
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Error 带分类的业务错误；Field 仅校验错误使用
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// 未登录也算一种无权限
func (e *Error) Is(target error) bool {
	return e.Kind == ErrUnauthenticated && target == ErrUnauthorized
}

func Validation(field, msg string) error {
	return &Error{Kind: ErrValidation, Field: field, Msg: msg}
}

func NotFound(what string) error {
	return &Error{Kind: ErrNotFound, Msg: what + " not found"}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

func CapacityExceeded(msg string) error {
	return &Error{Kind: ErrCapacityExceeded, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Msg: msg}
}

// FieldOf 取校验错误的字段名，非校验错误返回空
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
