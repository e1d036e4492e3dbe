package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Status  int    `json:"-"`       // 上游HTTP状态码（仅上游错误携带，其余为0）
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如网络错误、Redis错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// WrapWithCode 用指定错误码包装底层错误
func WrapWithCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（上游API异常、Redis异常）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal   = 50000 // 内部错误
	ErrCodeRedisError = 50002 // Redis错误

	// 上游API错误（50200-50299）
	ErrCodeUpstreamUnreachable = 50200 // 上游API无法访问（网络错误）
	ErrCodeUpstreamRejected    = 50201 // 上游API拒绝请求（非2xx响应）
	ErrCodeUpstreamBadPayload  = 50202 // 上游API响应格式无法解析
	ErrCodeUpstreamBreakerOpen = 50203 // 上游API熔断中

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized  = 40100 // 未登录
	ErrCodeInvalidToken  = 40101 // Token无效
	ErrCodeTokenExpired  = 40102 // Token过期
	ErrCodeLoginRejected = 40103 // 身份服务拒绝登录
	ErrCodeForbidden     = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUnknownResource  = 40401 // 未注册的资源类型
	ErrCodeRecordNotFound   = 40402 // 记录不存在
	ErrCodeFormNotFound     = 40403 // 表单会话不存在或已过期
	ErrCodeUnknownFormField = 40404 // 表单字段未定义

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeOperationForbidden = 40001 // 资源不支持此操作
	ErrCodeValidationFailed   = 40002 // 表单字段校验失败

	// 参数错误（40900-40999）
	ErrCodeInvalidParams   = 40900 // 参数错误
	ErrCodeBindError       = 40901 // 参数绑定失败
	ErrCodeConfirmRequired = 40907 // 删除操作缺少确认
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal   = New(ErrCodeInternal, "系统内部错误")
	ErrRedisError = New(ErrCodeRedisError, "缓存服务错误")

	// 上游API
	ErrUpstreamUnreachable = New(ErrCodeUpstreamUnreachable, "无法连接到数据服务")
	ErrUpstreamBadPayload  = New(ErrCodeUpstreamBadPayload, "数据服务响应格式异常")
	ErrUpstreamBreakerOpen = New(ErrCodeUpstreamBreakerOpen, "数据服务暂时不可用，请稍后重试")

	// 认证授权
	ErrUnauthorized  = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken  = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired  = New(ErrCodeTokenExpired, "Token已过期")
	ErrLoginRejected = New(ErrCodeLoginRejected, "用户名或密码错误")
	ErrForbidden     = New(ErrCodeForbidden, "无权限访问")

	// 资源
	ErrUnknownResource  = New(ErrCodeUnknownResource, "未知的资源类型")
	ErrRecordNotFound   = New(ErrCodeRecordNotFound, "记录不存在")
	ErrFormNotFound     = New(ErrCodeFormNotFound, "表单会话不存在或已过期")
	ErrUnknownFormField = New(ErrCodeUnknownFormField, "表单字段未定义")

	// 业务规则
	ErrOperationForbidden = New(ErrCodeOperationForbidden, "该资源不支持此操作")
	ErrValidationFailed   = New(ErrCodeValidationFailed, "表单校验失败")

	// 参数错误
	ErrInvalidParams   = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError       = New(ErrCodeBindError, "参数格式错误")
	ErrConfirmRequired = New(ErrCodeConfirmRequired, "删除操作需要确认（confirm=true）")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CodeOf 提取业务错误码（非AppError返回ErrCodeInternal）
func CodeOf(err error) int {
	return GetAppError(err).Code
}

// WrapUpstream 包装上游API的非2xx响应，保留HTTP状态码
// 调用方可据此区分上游的客户端错误（4xx）和服务端错误（5xx）
func WrapUpstream(status, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     fmt.Errorf("upstream status %d", status),
	}
}

// StatusOf 提取错误携带的上游HTTP状态码（非上游错误返回0）
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
