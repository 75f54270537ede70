package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApiError 自定义API错误，直接携带HTTP状态码
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError(message string) *ApiError {
	return NewApiError(message, http.StatusUnauthorized, "UNAUTHORIZED")
}

// ErrorKind 业务错误类别
type ErrorKind string

const (
	KindNotFound         ErrorKind = "NotFound"
	KindAccessDenied     ErrorKind = "AccessDenied"
	KindPermissionDenied ErrorKind = "PermissionDenied"
	KindValidation       ErrorKind = "ValidationError"
	KindInvalidState     ErrorKind = "InvalidState"
	KindConflict         ErrorKind = "Conflict"
)

// DomainError 业务层抛出的错误，由 HandleError 翻译为HTTP响应
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error 实现error接口
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewNotFoundError 资源不存在或不属于当前组织
func NewNotFoundError(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message}
}

// NewAccessDeniedError 用户不是组织成员
func NewAccessDeniedError(message string) *DomainError {
	return &DomainError{Kind: KindAccessDenied, Message: message}
}

// NewPermissionDeniedError 角色权限不足
func NewPermissionDeniedError(message string) *DomainError {
	return &DomainError{Kind: KindPermissionDenied, Message: message}
}

// NewValidationError 输入不合法
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewInvalidStateError 违反生命周期规则
func NewInvalidStateError(message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: message}
}

// NewConflictError 被关联数据阻止的操作
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// IsKind 判断错误链中是否包含指定类别的业务错误
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

var kindStatus = map[ErrorKind]struct {
	status int
	code   string
}{
	KindNotFound:         {http.StatusNotFound, "RESOURCE_NOT_FOUND"},
	KindAccessDenied:     {http.StatusForbidden, "NOT_A_MEMBER"},
	KindPermissionDenied: {http.StatusForbidden, "FORBIDDEN"},
	KindValidation:       {http.StatusBadRequest, "VALIDATION_ERROR"},
	KindInvalidState:     {http.StatusBadRequest, "INVALID_STATE"},
	KindConflict:         {http.StatusConflict, "CONFLICT"},
}

// StatusFor 返回错误对应的HTTP状态码、错误码和对外消息
func StatusFor(err error) (int, string, string) {
	var de *DomainError
	if errors.As(err, &de) {
		if m, ok := kindStatus[de.Kind]; ok {
			return m.status, m.code, de.Message
		}
	}
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.ErrorCode, apiErr.Message
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}

	status, code, message := StatusFor(err)
	event := Logger.Warn()
	if status >= http.StatusInternalServerError {
		event = Logger.Error()
	}
	event.Err(err).
		Str("request_id", c.GetString(ContextRequestIDKey)).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Int("status", status).
		Msg("API错误")

	// 未分类的错误不向调用方暴露内部细节
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}
