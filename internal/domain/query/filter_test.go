package query

import (
	"net/url"
	"testing"
)

var testFilters = []string{"cat_id", "city", "is_active"}

// TestParseValues_Defaults 测试缺省参数回退默认值
func TestParseValues_Defaults(t *testing.T) {
	f := ParseValues(url.Values{}, testFilters)

	if f.Page != 1 || f.Limit != 5 {
		t.Errorf("期望page=1 limit=5，实际page=%d limit=%d", f.Page, f.Limit)
	}
	if f.Keyword != "" || len(f.Filters) != 0 {
		t.Errorf("期望空筛选，实际%+v", f)
	}
}

// TestParseValues_BadNumbers 测试非法数字回退默认值
func TestParseValues_BadNumbers(t *testing.T) {
	v := url.Values{}
	v.Set("page", "abc")
	v.Set("limit", "-3")

	f := ParseValues(v, testFilters)
	if f.Page != 1 || f.Limit != 5 {
		t.Errorf("非法数字应回退默认值，实际page=%d limit=%d", f.Page, f.Limit)
	}
}

// TestParseValues_UnknownAndWhitespace 测试未知参数忽略、纯空白keyword视为空
func TestParseValues_UnknownAndWhitespace(t *testing.T) {
	v := url.Values{}
	v.Set("keyword", "   ")
	v.Set("not_a_filter", "1")
	v.Set("cat_id", "c01")
	v.Set("sort_type", "DESC")

	f := ParseValues(v, testFilters)
	if f.Keyword != "" {
		t.Errorf("纯空白keyword应视为空，实际%q", f.Keyword)
	}
	if _, ok := f.Filters["not_a_filter"]; ok {
		t.Error("未注册的筛选键不应进入Filters")
	}
	if f.Filters["cat_id"] != "c01" {
		t.Errorf("cat_id解析错误: %+v", f.Filters)
	}
	if f.SortType != "desc" {
		t.Errorf("sort_type应归一化为desc，实际%q", f.SortType)
	}
}

// TestApply_ResetsPage 测试非page字段变化时页码重置为1
func TestApply_ResetsPage(t *testing.T) {
	f := Default()
	f.Page = 7

	next := f.Apply(Partial{"keyword": "kinh tế"}, testFilters)
	if next.Page != 1 {
		t.Errorf("筛选变化后页码应重置为1，实际%d", next.Page)
	}
	if next.Keyword != "kinh tế" {
		t.Errorf("keyword未更新: %q", next.Keyword)
	}
}

// TestApply_ExplicitPageNotReset 测试显式翻页不被重置
func TestApply_ExplicitPageNotReset(t *testing.T) {
	f := Default()
	f.Keyword = "go"

	next := f.Apply(Partial{"page": "3"}, testFilters)
	if next.Page != 3 {
		t.Errorf("显式翻页应生效，实际page=%d", next.Page)
	}

	// 同时改筛选和页码：显式page优先
	next = f.Apply(Partial{"keyword": "rust", "page": "2"}, testFilters)
	if next.Page != 2 {
		t.Errorf("显式page不应被筛选变化重置，实际%d", next.Page)
	}
}

// TestApply_UnchangedValueKeepsPage 测试传入相同值不触发页码重置
func TestApply_UnchangedValueKeepsPage(t *testing.T) {
	f := Default()
	f.Keyword = "go"
	f.Page = 4

	next := f.Apply(Partial{"keyword": "go"}, testFilters)
	if next.Page != 4 {
		t.Errorf("筛选值未变化时页码应保持，实际%d", next.Page)
	}
}

// TestApply_EmptyValueDeletesKey 测试空值删除筛选键
func TestApply_EmptyValueDeletesKey(t *testing.T) {
	f := Default()
	f.Filters["city"] = "Đà Nẵng"
	f.Page = 2

	next := f.Apply(Partial{"city": ""}, testFilters)
	if _, ok := next.Filters["city"]; ok {
		t.Error("空值应删除筛选键而不是存空字符串")
	}
	if next.Page != 1 {
		t.Errorf("取消筛选同样是筛选变化，页码应重置，实际%d", next.Page)
	}

	// 原状态不受影响
	if f.Filters["city"] != "Đà Nẵng" {
		t.Error("Apply不应修改原状态")
	}
}

// TestValues_OmitsDefaults 测试序列化省略默认值
func TestValues_OmitsDefaults(t *testing.T) {
	f := Default()
	f.Keyword = "tâm lý"

	v := f.Values()
	if v.Has("page") || v.Has("limit") {
		t.Errorf("默认page/limit不应序列化: %v", v)
	}
	if v.Get("keyword") != "tâm lý" {
		t.Errorf("keyword序列化错误: %v", v)
	}

	f.Page = 2
	if got := f.Values().Get("page"); got != "2" {
		t.Errorf("非默认page应序列化，实际%q", got)
	}
}

// TestRoundTrip 测试序列化↔解析往返不丢失信息
func TestRoundTrip(t *testing.T) {
	f := Default()
	f.Page = 3
	f.Limit = 20
	f.Keyword = "sách"
	f.SortBy = "price"
	f.SortType = "asc"
	f.Filters["cat_id"] = "c09"
	f.Filters["is_active"] = "true"

	parsed := ParseValues(f.Values(), testFilters)
	if !f.Equal(parsed) {
		t.Errorf("往返不一致:\n原始: %+v\n解析: %+v", f, parsed)
	}

	// 默认状态往返后仍为默认
	d := Default()
	if !d.Equal(ParseValues(d.Values(), testFilters)) {
		t.Error("默认状态往返后应保持默认")
	}
}

// TestKey_OrderIndependent 测试规范化键与构造顺序无关
func TestKey_OrderIndependent(t *testing.T) {
	a := Default()
	a.Filters["cat_id"] = "c01"
	a.Filters["city"] = "Hà Nội"
	a.Keyword = "văn học"

	b := Default()
	b.Keyword = "văn học"
	b.Filters["city"] = "Hà Nội"
	b.Filters["cat_id"] = "c01"

	if a.Key("products") != b.Key("products") {
		t.Errorf("等价状态的键应一致:\n%s\n%s", a.Key("products"), b.Key("products"))
	}

	if a.Key("products") == a.Key("customers") {
		t.Error("不同资源的键不应相同")
	}

	c := a.Apply(Partial{"keyword": "lịch sử"}, testFilters)
	if a.Key("products") == c.Key("products") {
		t.Error("筛选变化后键应变化")
	}
}
