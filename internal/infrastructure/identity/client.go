// Package identity 封装对身份服务的访问
//
// 设计说明：
// 1. 后台不保存任何密码，登录凭证原样转发给身份服务验证
// 2. Token由身份服务签发，本服务只用共享密钥验证（见pkg/jwt）
// 3. 身份服务不可用与凭证被拒是两类错误，前端提示不同
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/xiebiao/bookstore-admin/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
)

// Client 身份服务HTTP客户端
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient 创建身份服务客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.Identity.BaseURL,
		http: &http.Client{
			Timeout: cfg.Identity.GetTimeout() + time.Second,
		},
		timeout: cfg.Identity.GetTimeout(),
	}
}

// Staff 身份服务返回的员工信息
type Staff struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Staff        Staff  `json:"staff"`
}

// Login 转发登录凭证给身份服务
//
// 错误映射：
// - 网络错误     → ErrCodeUpstreamUnreachable
// - 401/403     → ErrLoginRejected（不区分用户名不存在和密码错误）
// - 其他非2xx   → ErrCodeUpstreamRejected
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化登录请求失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, "构造登录请求失败")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamUnreachable, "无法连接到身份服务")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamUnreachable, "读取身份服务响应失败")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.ErrLoginRejected
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var rej struct {
			Message string `json:"message"`
		}
		message := "身份服务拒绝了请求"
		if json.Unmarshal(body, &rej) == nil && rej.Message != "" {
			message = rej.Message
		}
		return nil, apperrors.New(apperrors.ErrCodeUpstreamRejected, message)
	}

	var envelope struct {
		Data LoginResult `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamBadPayload, "身份服务响应格式异常")
	}
	if envelope.Data.AccessToken == "" {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamBadPayload, "身份服务未返回Token")
	}

	return &envelope.Data, nil
}
