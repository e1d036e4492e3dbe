package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-admin/internal/application/auth"
	"github.com/xiebiao/bookstore-admin/internal/application/mutation"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token（Authorization: Bearer <token>）
// 2. 验证交给auth.Service：黑名单检查 + 签名验证
// 3. 员工信息注入Context，审计事件据此记录操作人
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth 要求登录
// 使用方式：
//
//	admin := r.Group("/admin/api/v1")
//	admin.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		claims, err := m.authService.Verify(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("staff_id", claims.StaffID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		// 操作人随Context传递到应用层（审计事件用）
		c.Request = c.Request.WithContext(
			mutation.WithActor(c.Request.Context(), claims.Username))

		c.Next()
	}
}

// GetUsername 从Context获取当前登录员工的用户名
func GetUsername(c *gin.Context) string {
	if v, ok := c.Get("username"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetStaffID 从Context获取当前登录员工ID
func GetStaffID(c *gin.Context) string {
	if v, ok := c.Get("staff_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
