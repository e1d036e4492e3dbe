// Package form 定义新建/编辑弹窗的表单草稿
//
// 一个草稿对应一次打开的弹窗：记录正在编辑的目标（新建时为空）、
// 已填写的字段值和校验错误。弹窗关闭或保存成功即销毁，
// 保存失败时草稿原样保留，用户输入不丢失。
package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/slug"
)

// Mode 表单模式
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft 表单草稿
type Draft struct {
	ID       string            `json:"id"`
	Resource string            `json:"resource"`
	Mode     Mode              `json:"mode"`
	TargetID string            `json:"target_id,omitempty"` // 编辑模式下的记录ID
	Values   resource.Record   `json:"values"`
	Errors   map[string]string `json:"errors,omitempty"`

	// slugTouched 标记slug被手动改过
	// 一旦手动设置过slug，就不再跟随名称字段自动派生
	slugTouched bool

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft 创建草稿
// 编辑模式下initial为当前记录值的快照；已有非派生slug视为手动设置
func NewDraft(id string, desc *resource.Descriptor, mode Mode, targetID string, initial resource.Record) *Draft {
	values := resource.Record{}
	for k, v := range initial {
		values[k] = v
	}

	d := &Draft{
		ID:        id,
		Resource:  desc.Name,
		Mode:      mode,
		TargetID:  targetID,
		Values:    values,
		Errors:    map[string]string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if desc.HasSlug() {
		name, _ := values[desc.NameField].(string)
		current, _ := values[desc.SlugField].(string)
		if current != "" && current != slug.Make(name) {
			d.slugTouched = true
		}
	}

	return d
}

// SetField 更新单个字段
// 名称字段变化时自动重算slug（除非slug被手动设置过）
func (d *Draft) SetField(desc *resource.Descriptor, name string, value interface{}) error {
	spec, ok := desc.Field(name)
	if !ok {
		return apperrors.ErrUnknownFormField
	}

	normalized, err := normalize(spec, value)
	if err != nil {
		d.Errors[name] = err.Error()
		d.UpdatedAt = time.Now()
		return nil
	}

	d.Values[name] = normalized
	delete(d.Errors, name)

	if desc.HasSlug() {
		switch name {
		case desc.SlugField:
			d.slugTouched = true
		case desc.NameField:
			if !d.slugTouched {
				text, _ := normalized.(string)
				d.Values[desc.SlugField] = slug.Make(text)
			}
		}
	}

	d.UpdatedAt = time.Now()
	return nil
}

// Validate 校验全部字段，返回字段→错误信息
// 校验结果同时写入d.Errors；存在错误时提交被拒绝，不会发往上游
func (d *Draft) Validate(desc *resource.Descriptor) map[string]string {
	errs := map[string]string{}

	for _, spec := range desc.Fields {
		value := d.Values[spec.Name]

		if isEmpty(value) {
			if spec.Required {
				errs[spec.Name] = "Vui lòng nhập " + strings.ToLower(spec.Label)
			}
			continue
		}

		if spec.MaxLen > 0 {
			if s, ok := value.(string); ok && len([]rune(s)) > spec.MaxLen {
				errs[spec.Name] = fmt.Sprintf("%s tối đa %d ký tự", spec.Label, spec.MaxLen)
				continue
			}
		}

		if len(spec.Enum) > 0 {
			s, _ := value.(string)
			if !containsString(spec.Enum, s) {
				errs[spec.Name] = spec.Label + " không hợp lệ"
			}
		}
	}

	d.Errors = errs
	d.UpdatedAt = time.Now()
	return errs
}

// normalize 按字段类型归一化输入值
// JSON解码后的数字统一是float64；字符串形式的数字也接受（表单输入常见）
func normalize(spec *resource.FieldSpec, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch spec.Kind {
	case resource.FieldString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s phải là chuỗi", spec.Label)
		}
		return strings.TrimSpace(s), nil

	case resource.FieldInt:
		switch v := value.(type) {
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("%s phải là số nguyên", spec.Label)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s phải là số nguyên", spec.Label)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("%s phải là số nguyên", spec.Label)
		}

	case resource.FieldFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%s phải là số", spec.Label)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("%s phải là số", spec.Label)
		}

	case resource.FieldBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%s phải là true/false", spec.Label)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("%s phải là true/false", spec.Label)
		}

	case resource.FieldStringList:
		switch v := value.(type) {
		case string:
			// 逗号分隔输入拆为数组（与前端表单行为一致）
			parts := strings.Split(v, ",")
			list := make([]string, 0, len(parts))
			for _, p := range parts {
				if trimmed := strings.TrimSpace(p); trimmed != "" {
					list = append(list, trimmed)
				}
			}
			return list, nil
		case []interface{}:
			list := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%s phải là danh sách chuỗi", spec.Label)
				}
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					list = append(list, trimmed)
				}
			}
			return list, nil
		case []string:
			return v, nil
		default:
			return nil, fmt.Errorf("%s phải là danh sách chuỗi", spec.Label)
		}
	}

	return value, nil
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
