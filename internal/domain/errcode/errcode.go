package errcode

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error 业务错误，携带业务码与 HTTP 状态
type Error struct {
	Code    int
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// ErrorCode 业务码
func (e *Error) ErrorCode() int { return e.Code }

// HTTPStatus 对应的 HTTP 状态码
func (e *Error) HTTPStatus() int { return e.Status }

// ErrorMessage 面向客户端的提示信息
func (e *Error) ErrorMessage() string { return e.Message }

// Is 按业务码判等，便于 errors.Is(err, errcode.UserNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage 返回替换了提示信息的副本
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Status: e.Status}
}

func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// From 从错误链中提取业务错误
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Is 判断错误链中是否为指定业务错误
func Is(err error, target *Error) bool {
	be, ok := From(err)
	return ok && be.Code == target.Code
}

func define(code int, status int, msg string) *Error {
	if code < 1000 || code > 5999 {
		panic(fmt.Sprintf("error code %d out of range", code))
	}
	e := &Error{Code: code, Message: msg, Status: status}
	if _, dup := registry[code]; dup {
		panic(fmt.Sprintf("duplicate error code %d", code))
	}
	registry[code] = e
	return e
}

var registry = map[int]*Error{}

// Lookup 根据业务码查找错误定义
func Lookup(code int) (*Error, bool) {
	e, ok := registry[code]
	return e, ok
}

func badRequest(code int, msg string) *Error   { return define(code, http.StatusBadRequest, msg) }
func notFound(code int, msg string) *Error     { return define(code, http.StatusNotFound, msg) }
func forbidden(code int, msg string) *Error    { return define(code, http.StatusForbidden, msg) }
func unauthorized(code int, msg string) *Error { return define(code, http.StatusUnauthorized, msg) }
func internal(code int, msg string) *Error     { return define(code, http.StatusInternalServerError, msg) }
