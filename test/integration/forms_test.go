package integration

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：表单会话集成测试
//
// 测试场景覆盖：
// 1. 创建表单的完整生命周期（打开→填写→提交）
// 2. slug从名称自动派生（越南语变音符号转写）
// 3. 必填校验拦截提交
// 4. 关闭表单的幂等性

// GenerateTestName 生成唯一的测试名称
// 使用时间戳确保唯一性，避免测试重复运行时与上游已有记录重名
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// OpenTestForm 打开表单会话并返回草稿
func OpenTestForm(t *testing.T, token, resource, mode string) *DraftData {
	resp := PostJSON(t, BaseURL()+"/forms", map[string]string{
		"resource": resource,
		"mode":     mode,
	}, token)
	require.Equal(t, 0, resp.Code, "打开表单失败: %s", resp.Message)

	var draft DraftData
	require.NoError(t, json.Unmarshal(resp.Data, &draft), "解析表单草稿失败")
	require.NotEmpty(t, draft.ID, "表单ID不应为空")
	return &draft
}

// TestFormCreateCategory 测试新建分类的表单全流程
func TestFormCreateCategory(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	draft := OpenTestForm(t, token, "categories", "create")
	name := GenerateTestName("Thể loại test")

	t.Run("填写名称自动派生slug", func(t *testing.T) {
		resp := PatchJSON(t, BaseURL()+"/forms/"+draft.ID+"/fields", map[string]interface{}{
			"field": "name",
			"value": name,
		}, token)
		require.Equal(t, 0, resp.Code, "填写字段失败: %s", resp.Message)

		var updated DraftData
		require.NoError(t, json.Unmarshal(resp.Data, &updated))
		assert.NotEmpty(t, updated.Values["slug"], "slug应该从名称自动派生")
		t.Logf("✓ name=%q slug=%q", name, updated.Values["slug"])
	})

	t.Run("提交创建成功", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/forms/"+draft.ID+"/submit", nil, token)
		require.Equal(t, 0, resp.Code, "提交失败: %s", resp.Message)
	})

	t.Run("提交成功后会话已关闭", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/forms/"+draft.ID+"/submit", nil, token)
		assert.Equal(t, 40403, resp.Code, "已提交的表单应该找不到")
	})
}

// TestFormValidation 测试必填校验
func TestFormValidation(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	draft := OpenTestForm(t, token, "categories", "create")

	t.Run("空表单提交被校验拦截", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/forms/"+draft.ID+"/submit", nil, token)
		assert.Equal(t, 40002, resp.Code, "必填字段为空应该校验失败")

		var data struct {
			FieldErrors map[string]string `json:"field_errors"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotEmpty(t, data.FieldErrors["name"], "应该返回name字段的错误信息")
	})

	t.Run("不认识的字段被拒", func(t *testing.T) {
		resp := PatchJSON(t, BaseURL()+"/forms/"+draft.ID+"/fields", map[string]interface{}{
			"field": "no_such_field",
			"value": "x",
		}, token)
		assert.Equal(t, 40404, resp.Code, "不在描述符中的字段应该被拒")
	})

	// 清理
	DeleteJSON(t, BaseURL()+"/forms/"+draft.ID, token)
}

// TestFormClose 测试关闭表单的幂等性
func TestFormClose(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	draft := OpenTestForm(t, token, "publishers", "create")

	resp := DeleteJSON(t, BaseURL()+"/forms/"+draft.ID, token)
	assert.Equal(t, 0, resp.Code, "关闭表单应该成功")

	// 重复关闭不报错：弹窗关闭必须幂等
	resp = DeleteJSON(t, BaseURL()+"/forms/"+draft.ID, token)
	assert.Equal(t, 0, resp.Code, "重复关闭不应该报错")
}

// TestFormOrdersForbidden 测试订单资源禁止打开创建表单
func TestFormOrdersForbidden(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	resp := PostJSON(t, BaseURL()+"/forms", map[string]string{
		"resource": "orders",
		"mode":     "create",
	}, token)
	assert.Equal(t, 40001, resp.Code, "订单资源应该禁止创建表单")
}
