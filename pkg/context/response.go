package context

import (
	"net/http"

	"github.com/pkg/errors"
)

// 与 errcode 通用段保持一致
const (
	CodeSuccess         = 200
	CodeParamError      = 1001
	CodeUnauthorized    = 1401
	CodeForbidden       = 1403
	CodeTooManyRequests = 1429
	CodeInternalError   = 1500

	MessageSuccess       = "Success"
	MessageInternalError = "Internal server error"
)

// Response 统一响应体 {code, message, data}，status 为 HTTP 状态码，不参与序列化
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`

	status int
	err    error
}

// Status 返回 HTTP 状态码，未设置时为 200
func (rsp *Response) Status() int {
	if rsp.status == 0 {
		return http.StatusOK
	}
	return rsp.status
}

// Err 导致失败的原始错误，成功时为 nil
func (rsp *Response) Err() error {
	return rsp.err
}

func (rsp *Response) Write(ctx *Context) {
	ctx.JSON(rsp.Status(), rsp)
}

// Success 成功响应
func Success(data any) *Response {
	return &Response{Code: CodeSuccess, Message: MessageSuccess, Data: data}
}

// PageResult 分页数据
type PageResult struct {
	Records  any   `json:"records"`
	Total    int64 `json:"total"`
	PageNum  int   `json:"page_num"`
	PageSize int   `json:"page_size"`
}

func PageSuccess(data any, total int64, pageNum, pageSize int) *Response {
	return Success(&PageResult{Records: data, Total: total, PageNum: pageNum, PageSize: pageSize})
}

// coder 业务错误需要实现的接口
type coder interface {
	error
	ErrorCode() int
	HTTPStatus() int
}

type messager interface {
	ErrorMessage() string
}

// Fail 将错误转换为响应：业务错误使用自身的业务码和状态码，其余错误一律 500 且不暴露细节
func Fail(err error) *Response {
	if err == nil {
		return Success(nil)
	}
	var c coder
	if errors.As(err, &c) {
		msg := c.Error()
		if m, ok := c.(messager); ok {
			msg = m.ErrorMessage()
		}
		return &Response{Code: c.ErrorCode(), Message: msg, status: c.HTTPStatus(), err: err}
	}
	return &Response{
		Code:    CodeInternalError,
		Message: MessageInternalError,
		status:  http.StatusInternalServerError,
		err:     err,
	}
}

// ParamError 参数校验失败
func ParamError(message string) *Response {
	return &Response{Code: CodeParamError, Message: message, status: http.StatusBadRequest}
}

// Unauthorized 未登录或令牌无效
func Unauthorized(message string) *Response {
	return &Response{Code: CodeUnauthorized, Message: message, status: http.StatusUnauthorized}
}

func Forbidden(message string) *Response {
	return &Response{Code: CodeForbidden, Message: message, status: http.StatusForbidden}
}

// RateLimit 接口限流
func RateLimit(message string) *Response {
	return &Response{Code: CodeTooManyRequests, Message: message, status: http.StatusTooManyRequests}
}

func InternalError() *Response {
	return &Response{
		Code:    CodeInternalError,
		Message: MessageInternalError,
		status:  http.StatusInternalServerError,
	}
}
