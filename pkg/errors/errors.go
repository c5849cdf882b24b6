package errors

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/murverse-service/internal/middleware"
	"github.com/haierkeys/murverse-service/pkg/code"
)

// AppError 统一应用错误结构体
// AppError is the JSON body of every failed request.
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 恒为 false，与成功响应的信封保持一致
	Status bool `json:"status"`
	// Kind 错误分类 (NotFound, Conflict ...)
	Kind string `json:"kind"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// Data 附加数据（可选）
	Data interface{} `json:"data,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As 沿错误链查找
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status the error is rendered with.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	e := &AppError{
		Code:       c.Code(),
		Kind:       c.Kind().String(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
	if c.HaveData() {
		e.Data = c.Data()
	}
	return e
}

// FromError converts any error into an AppError. Errors outside the code
// registry become ErrorServerInternal so backend text never leaks.
// FromError 把任意错误转换为 AppError，未登记的错误统一视为内部错误
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, err)
	}
	return NewAppError(code.ErrorServerInternal, err)
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，按错误分类写出 HTTP 状态码
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	appErr.TraceID = middleware.GetTraceIDFromGin(c)
	c.Set("status_code", appErr.Code)
	c.JSON(appErr.httpStatus, appErr)
}

// IsCode reports whether err carries the given registered code.
func IsCode(err error, c *code.Code) bool {
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr.Code() == c.Code()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == c.Code()
	}
	return false
}
