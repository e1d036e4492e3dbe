package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 教学说明：认证模块集成测试
//
// 测试场景覆盖：
// 1. 登录成功与失败（凭证由身份服务验证）
// 2. 未登录访问受保护接口被拒
// 3. 登出后Token立即失效（Redis黑名单）

// TestAuthLogin 测试登录流程
func TestAuthLogin(t *testing.T) {
	RequireServer(t)

	t.Run("错误密码登录被拒", func(t *testing.T) {
		loginReq := map[string]string{
			"username": "no-such-user",
			"password": "wrong-password",
		}

		resp := PostJSON(t, BaseURL()+"/auth/login", loginReq, "")
		assert.Equal(t, 40103, resp.Code, "错误凭证应该被拒绝")
	})

	t.Run("缺少参数返回绑定错误", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/auth/login", map[string]string{"username": "admin"}, "")
		assert.Equal(t, 40901, resp.Code, "缺少密码应该返回参数错误")
	})
}

// TestAuthRequired 测试受保护接口的认证要求
func TestAuthRequired(t *testing.T) {
	RequireServer(t)

	t.Run("未带Token访问列表被拒", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", nil), "")
		assert.Equal(t, 40100, resp.Code, "未登录应该被拒")
	})

	t.Run("伪造Token被拒", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", nil), "not-a-real-token")
		assert.Equal(t, 40101, resp.Code, "伪造Token应该被拒")
	})
}

// TestAuthLogout 测试登出后Token失效
func TestAuthLogout(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	t.Run("登出前Token可用", func(t *testing.T) {
		resp := GetJSON(t, ListURL("categories", nil), token)
		assert.Equal(t, 0, resp.Code, "登录后的Token应该可用: %s", resp.Message)
	})

	t.Run("登出后同一Token被拒", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/auth/logout", nil, token)
		assert.Equal(t, 0, resp.Code, "登出应该成功: %s", resp.Message)

		resp = GetJSON(t, ListURL("categories", nil), token)
		assert.Equal(t, 40101, resp.Code, "登出后的Token应该立即失效")

		t.Logf("✓ 登出后Token已进入黑名单")
	})
}
