package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：资源列表集成测试
//
// 测试场景覆盖：
// 1. 七种资源的列表查询（统一的资源网关）
// 2. 分页、关键词搜索、排序参数透传
// 3. 未注册资源与越界参数的钳制
// 4. 删除确认机制（confirm=true）

// allResources 后台管理的全部资源类型
var allResources = []string{
	"products", "categories", "customers", "orders",
	"staffs", "suppliers", "publishers",
}

// TestResourceList 测试各资源的列表查询
func TestResourceList(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	for _, res := range allResources {
		t.Run("列表查询_"+res, func(t *testing.T) {
			resp := GetJSON(t, ListURL(res, nil), token)
			require.Equal(t, 0, resp.Code, "列表查询失败: %s", resp.Message)

			var page PageData
			err := json.Unmarshal(resp.Data, &page)
			require.NoError(t, err, "解析分页数据失败")

			assert.Equal(t, 1, page.Page, "默认页码应该是1")
			assert.Equal(t, 5, page.Limit, "默认每页大小应该是5")
			assert.LessOrEqual(t, len(page.List), 5, "返回条数不应超过每页大小")

			t.Logf("✓ %s 共 %d 条记录", res, page.Total)
		})
	}
}

// TestResourceListPagination 测试分页参数
func TestResourceListPagination(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	t.Run("指定页码和每页大小", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", map[string]string{
			"page": "2", "limit": "10",
		}), token)
		require.Equal(t, 0, resp.Code, "分页查询失败: %s", resp.Message)

		var page PageData
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 10, page.Limit)
	})

	t.Run("非法参数钳制到默认值", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", map[string]string{
			"page": "0", "limit": "9999",
		}), token)
		require.Equal(t, 0, resp.Code)

		var page PageData
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, 1, page.Page, "页码0应该钳制为1")
		assert.Equal(t, 100, page.Limit, "超限的每页大小应该钳制到上限")
	})
}

// TestResourceListSearch 测试关键词搜索与排序
func TestResourceListSearch(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	t.Run("关键词搜索", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", map[string]string{
			"keyword": "sách",
		}), token)
		assert.Equal(t, 0, resp.Code, "搜索失败: %s", resp.Message)
	})

	t.Run("按字段排序", func(t *testing.T) {
		resp := GetJSON(t, ListURL("products", map[string]string{
			"sort_by": "price", "sort_type": "desc",
		}), token)
		assert.Equal(t, 0, resp.Code, "排序查询失败: %s", resp.Message)
	})
}

// TestResourceUnknown 测试未注册的资源类型
func TestResourceUnknown(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	resp := GetJSON(t, ListURL("widgets", nil), token)
	assert.Equal(t, 40401, resp.Code, "未注册的资源应该返回资源类型错误")
}

// TestResourceDeleteConfirm 测试删除确认机制
func TestResourceDeleteConfirm(t *testing.T) {
	RequireServer(t)
	token := LoginTestStaff(t)

	t.Run("未确认的删除被拦截", func(t *testing.T) {
		// ID随意：确认检查在任何上游请求发出之前
		resp := DeleteJSON(t, BaseURL()+"/resources/products/any-id", token)
		assert.Equal(t, 40907, resp.Code, "缺少confirm=true应该被拦截")
	})

	t.Run("订单不允许创建", func(t *testing.T) {
		resp := PostJSON(t, BaseURL()+"/resources/orders", map[string]interface{}{
			"note": "手动下单",
		}, token)
		assert.Equal(t, 40001, resp.Code, "订单资源应该禁止后台创建")
	})
}
