// Package auth 认证边界的应用层
//
// 设计说明：
// 1. 本服务不保存密码也不签发Token：凭证转发给身份服务，
//    签回的JWT用共享密钥在本地验证
// 2. 登录会话与Token黑名单存Redis：
//    JWT本身无法撤销，登出通过黑名单让Token立即失效
package auth

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookstore-admin/internal/infrastructure/identity"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	jwtpkg "github.com/xiebiao/bookstore-admin/pkg/jwt"
)

// IdentityClient 身份服务接口（由identity.Client实现）
type IdentityClient interface {
	Login(ctx context.Context, username, password string) (*identity.LoginResult, error)
}

// SessionStore 会话存储接口（由redis.SessionStore实现）
type SessionStore interface {
	SaveSession(ctx context.Context, staffID string, sessionData map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, staffID string) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// Service 认证用例
type Service struct {
	identity IdentityClient
	sessions SessionStore
	jwt      *jwtpkg.Manager
}

// NewService 创建认证用例
func NewService(identityClient IdentityClient, sessions SessionStore, jwtManager *jwtpkg.Manager) *Service {
	return &Service{
		identity: identityClient,
		sessions: sessions,
		jwt:      jwtManager,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Staff        identity.Staff `json:"staff"`
}

// Login 登录
// 凭证转发给身份服务；成功后在Redis记录会话（在线统计、强制下线）
func (s *Service) Login(ctx context.Context, username, password, clientIP string) (*LoginResult, error) {
	result, err := s.identity.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"username":   result.Staff.Username,
		"role":       result.Staff.Role,
		"login_ip":   clientIP,
		"login_time": time.Now().Format(time.RFC3339),
	}
	// 会话写入失败不阻断登录（Redis抖动时仍可工作，只是丢在线记录）
	if err := s.sessions.SaveSession(ctx, result.Staff.ID, sessionData, s.jwt.RefreshTokenTTL()); err != nil {
		log.Printf("[auth] 保存登录会话失败: staff=%s err=%v", result.Staff.ID, err)
	}

	return &LoginResult{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Staff:        result.Staff,
	}, nil
}

// Logout 登出
// Token进黑名单（TTL为Token剩余有效期），会话删除
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		// 已过期/无效的Token无需拉黑
		return nil
	}

	ttl := s.jwt.AccessTokenTTL()
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.sessions.AddToBlacklist(ctx, token, ttl); err != nil {
		return err
	}
	return s.sessions.DeleteSession(ctx, claims.StaffID)
}

// Verify 验证Token（认证中间件调用）
// 黑名单优先：已登出的Token即使签名有效也拒绝
func (s *Service) Verify(ctx context.Context, token string) (*jwtpkg.Claims, error) {
	blacklisted, err := s.sessions.IsInBlacklist(ctx, token)
	if err != nil {
		// Redis故障时降级为只验签名（可用性优先于撤销即时性）
		blacklisted = false
	}
	if blacklisted {
		return nil, apperrors.ErrInvalidToken
	}

	return s.jwt.ParseToken(token)
}
