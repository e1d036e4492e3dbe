// Package query 定义列表页的筛选/分页状态
//
// 管理后台每个资源列表页的可见数据由一组用户可控参数决定：
// 页码、每页大小、搜索关键词、排序、资源特定筛选（分类、城市、状态等）。
// 这组状态与浏览器地址栏的query string互为镜像：刷新、分享链接后
// 列表视图可完整还原，因此序列化必须无损且最小化（默认值不落盘）。
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultPage 默认页码
	DefaultPage = 1
	// DefaultLimit 默认每页大小（与前端列表页保持一致）
	DefaultLimit = 5
	// MaxLimit 每页大小上限
	MaxLimit = 100
)

// 保留参数名（所有资源通用）
const (
	ParamPage     = "page"
	ParamLimit    = "limit"
	ParamKeyword  = "keyword"
	ParamSortBy   = "sort_by"
	ParamSortType = "sort_type"
)

// FilterState 列表页筛选/分页状态
// 不变式：
// 1. Page >= 1，Limit在[1, MaxLimit]内
// 2. Keyword去除首尾空白，纯空白视为未设置
// 3. Filters只保存非空值（空值即"未筛选"，直接删除键）
type FilterState struct {
	Page     int
	Limit    int
	Keyword  string
	SortBy   string
	SortType string            // asc | desc
	Filters  map[string]string // 资源特定筛选，如 cat_id、city、status
}

// Default 返回默认状态
func Default() FilterState {
	return FilterState{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Filters: map[string]string{},
	}
}

// ParseValues 从URL query参数解析筛选状态
// 规则：
// 1. 未知参数直接忽略
// 2. page/limit解析失败回退默认值（不产生0或负数）
// 3. 纯空白keyword视为空
// 4. allowedFilters之外的筛选键不进入Filters
func ParseValues(values url.Values, allowedFilters []string) FilterState {
	f := Default()

	if p, err := strconv.Atoi(values.Get(ParamPage)); err == nil && p >= 1 {
		f.Page = p
	}
	if l, err := strconv.Atoi(values.Get(ParamLimit)); err == nil && l >= 1 {
		f.Limit = l
		if f.Limit > MaxLimit {
			f.Limit = MaxLimit
		}
	}

	f.Keyword = strings.TrimSpace(values.Get(ParamKeyword))
	f.SortBy = strings.TrimSpace(values.Get(ParamSortBy))

	if st := strings.ToLower(strings.TrimSpace(values.Get(ParamSortType))); st == "asc" || st == "desc" {
		f.SortType = st
	}

	for _, name := range allowedFilters {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			f.Filters[name] = v
		}
	}

	return f
}

// Partial 状态的增量更新
// 语义：key → 新值；空字符串表示删除该键（恢复默认/取消筛选）
type Partial map[string]string

// Apply 将增量合并到当前状态，返回新状态（原状态不变）
//
// 翻页语义：任何非page字段发生实际变化时，页码重置为1 ——
// 除非调用方在增量里显式带上page（明确的翻页点击不能被悄悄重置）。
func (f FilterState) Apply(p Partial, allowedFilters []string) FilterState {
	next := f.clone()

	_, pageExplicit := p[ParamPage]
	changed := false

	for key, raw := range p {
		value := strings.TrimSpace(raw)

		switch key {
		case ParamPage:
			page := DefaultPage
			if n, err := strconv.Atoi(value); err == nil && n >= 1 {
				page = n
			}
			next.Page = page

		case ParamLimit:
			limit := DefaultLimit
			if n, err := strconv.Atoi(value); err == nil && n >= 1 {
				limit = n
				if limit > MaxLimit {
					limit = MaxLimit
				}
			}
			if limit != next.Limit {
				next.Limit = limit
				changed = true
			}

		case ParamKeyword:
			if value != next.Keyword {
				next.Keyword = value
				changed = true
			}

		case ParamSortBy:
			if value != next.SortBy {
				next.SortBy = value
				changed = true
			}

		case ParamSortType:
			st := strings.ToLower(value)
			if st != "asc" && st != "desc" {
				st = ""
			}
			if st != next.SortType {
				next.SortType = st
				changed = true
			}

		default:
			if !contains(allowedFilters, key) {
				continue // 未知键忽略
			}
			if value == "" {
				if _, ok := next.Filters[key]; ok {
					delete(next.Filters, key)
					changed = true
				}
			} else if next.Filters[key] != value {
				next.Filters[key] = value
				changed = true
			}
		}
	}

	if changed && !pageExplicit {
		next.Page = DefaultPage
	}

	return next
}

// Values 序列化为url.Values
// 默认值与空值一律省略，保证地址栏最小化且可无损还原
func (f FilterState) Values() url.Values {
	v := url.Values{}

	if f.Page != DefaultPage {
		v.Set(ParamPage, strconv.Itoa(f.Page))
	}
	if f.Limit != DefaultLimit {
		v.Set(ParamLimit, strconv.Itoa(f.Limit))
	}
	if f.Keyword != "" {
		v.Set(ParamKeyword, f.Keyword)
	}
	if f.SortBy != "" {
		v.Set(ParamSortBy, f.SortBy)
	}
	if f.SortType != "" {
		v.Set(ParamSortType, f.SortType)
	}
	for key, value := range f.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}

	return v
}

// Key 生成规范化缓存键
// 字段按键名排序后拼接，保证构造顺序不同的等价状态产生同一个键
func (f FilterState) Key(resource string) string {
	v := f.Values()

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(resource)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v.Get(k))
	}
	return b.String()
}

// Equal 判断两个状态是否等价（以规范化键为准）
func (f FilterState) Equal(other FilterState) bool {
	return f.Key("") == other.Key("")
}

func (f FilterState) clone() FilterState {
	next := f
	next.Filters = make(map[string]string, len(f.Filters))
	for k, v := range f.Filters {
		next.Filters[k] = v
	}
	return next
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
