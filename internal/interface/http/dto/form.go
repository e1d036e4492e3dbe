package dto

// OpenFormRequest 打开表单会话请求
type OpenFormRequest struct {
	Resource string                 `json:"resource" binding:"required" example:"products"`
	Mode     string                 `json:"mode" binding:"required,oneof=create edit" example:"create"`
	TargetID string                 `json:"target_id,omitempty"` // 编辑模式必填
	Initial  map[string]interface{} `json:"initial,omitempty"`   // 编辑模式下记录快照
}

// SetFieldRequest 更新表单字段请求
type SetFieldRequest struct {
	Field string      `json:"field" binding:"required" example:"product_name"`
	Value interface{} `json:"value"`
}
