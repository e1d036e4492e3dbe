// Package resource 把每种资源的外部契约描述为数据而不是代码
//
// 七种资源（商品、分类、客户、订单、员工、供应商、出版社）的管理页
// 共享同一套"列表-筛选-弹窗表单-增删改"逻辑，差异全部收敛到Descriptor：
// 上游路径、查询参数名、响应包裹结构、表单字段、支持的操作。
// 上游API历史上各资源的参数名与包裹结构并不统一
// （orders用search而非keyword、响应有data.products/data.items/裸data三种），
// 这些差异属于外部契约，必须按资源原样保留，不做"统一化"。
package resource

import "fmt"

// Record 上游返回的资源记录
// 结构因资源而异，只约定ID字段稳定且唯一
type Record map[string]interface{}

// ID 提取记录主键（上游为MongoDB，主键字段是_id）
func (r Record) ID(idField string) string {
	v, ok := r[idField]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// ListResult 一页列表数据
// 每次成功拉取整体替换，从不增量修补
type ListResult struct {
	Items      []Record `json:"items"`
	TotalCount int64    `json:"total_count"`
}

// EnvelopeSpec 上游列表响应的包裹结构
//
// 三种形态：
// 1. {data: {products: [...], totalRecords: N}}  → ItemsKey="products", TotalKey="totalRecords"
// 2. {data: {items: [...], totalRecords: N}}     → ItemsKey="items", TotalKey="totalRecords"
// 3. {data: [...], total: N}                     → ItemsKey=""（data本身是数组）, TotalKey="total"
type EnvelopeSpec struct {
	ItemsKey string // data内的列表键；空表示data本身就是数组
	TotalKey string // 总数键；在data内（形态1/2）或顶层（形态3）
}

// FieldKind 表单字段类型
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldFloat
	FieldBool
	FieldStringList // 逗号分隔输入，提交前拆为数组
)

// FieldSpec 表单字段定义
type FieldSpec struct {
	Name     string    // 字段名（与上游payload一致）
	Label    string    // 展示名（校验错误提示用）
	Kind     FieldKind
	Required bool
	MaxLen   int      // 字符串最大长度，0表示不限制
	Enum     []string // 枚举取值，空表示不限制
}

// Descriptor 一种资源的完整外部契约
type Descriptor struct {
	Name    string // 资源名，同时是API路径段（products、orders...）
	Path    string // 上游集合路径（/api/v1/products）
	IDField string // 主键字段名

	// 列表查询契约
	KeywordParam string   // 关键词参数名（orders历史上用search）
	Sortable     bool     // 是否支持sort_by/sort_type
	FilterParams []string // 资源特定筛选参数名
	Envelope     EnvelopeSpec

	// 表单契约
	Fields    []FieldSpec
	NameField string // slug来源字段；空表示该资源无slug
	SlugField string

	// 支持的操作（orders没有后台创建入口）
	CanCreate bool
	CanUpdate bool
	CanDelete bool
}

// Field 按名称查找字段定义
func (d *Descriptor) Field(name string) (*FieldSpec, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// HasSlug 资源是否有slug派生字段
func (d *Descriptor) HasSlug() bool {
	return d.NameField != "" && d.SlugField != ""
}
