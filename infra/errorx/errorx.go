package errorx

import (
	"errors"
	"fmt"

	"l1l2/infra/errorx/errCode"
)

// 带错误码的业务错误, 统一由New/Wrap构造
type Error struct {
	code  errCode.Code
	msg   string
	cause error
}

func New(code errCode.Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap 在底层错误上叠加错误码与说明
func Wrap(err error, code errCode.Code, msg string) *Error {
	return &Error{code: code, msg: msg, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.msg)
}

func (e *Error) Code() errCode.Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsCode 判断err链上是否带指定错误码
func IsCode(err error, code errCode.Code) bool {
	var ex *Error
	if errors.As(err, &ex) {
		return ex.code == code
	}
	return false
}
