package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则（Don't Repeat Yourself）
// 将重复的代码（HTTP请求、JSON解析、登录）封装成可复用的函数
//
// 运行前提：
// 1. 管理后台服务已启动（默认 localhost:8080，可用 BOOKADMIN_TEST_ADDR 覆盖）
// 2. 上游数据服务和身份服务可达
// 3. 测试账号凭证通过 BOOKADMIN_TEST_USER / BOOKADMIN_TEST_PASS 提供

const (
	// DefaultAddr 服务默认监听地址
	DefaultAddr = "localhost:8080"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// BaseURL API基础URL
func BaseURL() string {
	addr := os.Getenv("BOOKADMIN_TEST_ADDR")
	if addr == "" {
		addr = DefaultAddr
	}
	return "http://" + addr + "/admin/api/v1"
}

// RequireServer 服务不可达时跳过测试
// 集成测试依赖运行中的服务，本地没起服务时不应该报失败
func RequireServer(t *testing.T) {
	addr := os.Getenv("BOOKADMIN_TEST_ADDR")
	if addr == "" {
		addr = DefaultAddr
	}
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Skipf("管理后台服务未启动（%s），跳过集成测试", addr)
	}
	conn.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PageData 列表响应数据
type PageData struct {
	List       []map[string]interface{} `json:"list"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
	Stale      bool                     `json:"stale"`
}

// DraftData 表单会话响应数据
type DraftData struct {
	ID     string                 `json:"id"`
	Mode   string                 `json:"mode"`
	Values map[string]interface{} `json:"values"`
}

// doJSON 发送请求并解析JSON响应
//
// 教学说明：
// - 使用*testing.T参数，可以在失败时立即终止测试
// - 使用require包进行断言，失败会立即停止（不继续执行）
// - 返回*Response而非error，简化调用方代码
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// PatchJSON 发送PATCH请求并解析JSON响应
func PatchJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PATCH", url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}

// ListURL 拼接列表查询URL
func ListURL(resource string, params map[string]string) string {
	u := BaseURL() + "/resources/" + resource
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

// LoginTestStaff 用测试账号登录并返回Token
//
// 教学说明：
// 这是一个"高阶"辅助函数，封装了完整的登录流程
// 简化了测试代码，让测试更关注业务逻辑而非基础设施
func LoginTestStaff(t *testing.T) string {
	username := os.Getenv("BOOKADMIN_TEST_USER")
	password := os.Getenv("BOOKADMIN_TEST_PASS")
	if username == "" || password == "" {
		t.Skip("未配置测试账号（BOOKADMIN_TEST_USER / BOOKADMIN_TEST_PASS），跳过")
	}

	loginReq := map[string]string{
		"username": username,
		"password": password,
	}

	resp := PostJSON(t, BaseURL()+"/auth/login", loginReq, "")
	require.Equal(t, 0, resp.Code, "登录失败: %s", resp.Message)

	var data LoginData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析登录响应失败")
	require.NotEmpty(t, data.AccessToken, "AccessToken不应为空")

	return data.AccessToken
}
