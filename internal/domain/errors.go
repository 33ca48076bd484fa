package domain

import (
	"errors"
	"net/http"
)

// 定义通用业务错误
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
)

// AppError 应用错误，包含错误码和消息
type AppError struct {
	Code    int    // HTTP 状态码
	Message string // 可展示给客户端的消息
	Err     error  // 原始错误
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// 草稿不存在或会话已过期
func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg, Err: ErrNotFound}
}

// 非法枚举值、数量 < 1、非有限数值、非 data:image/ 图片
func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg, Err: ErrInvalidInput}
}

// 存储层故障 (Redis 不可用、编码失败)
func NewInternalError(msg string, err error) *AppError {
	if err == nil {
		err = ErrInternalError
	}
	return &AppError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// ErrorStatus 返回 err 对应的状态码与可展示消息; 非 AppError 一律按 500 处理,
// 不暴露内部细节
func ErrorStatus(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
