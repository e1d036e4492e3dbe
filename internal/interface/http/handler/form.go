package handler

import (
	"github.com/gin-gonic/gin"

	appform "github.com/xiebiao/bookstore-admin/internal/application/form"
	domainform "github.com/xiebiao/bookstore-admin/internal/domain/form"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	"github.com/xiebiao/bookstore-admin/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/response"
)

// FormHandler 表单会话处理器
type FormHandler struct {
	forms *appform.Manager
}

// NewFormHandler 创建表单处理器
func NewFormHandler(forms *appform.Manager) *FormHandler {
	return &FormHandler{forms: forms}
}

// Open 打开表单会话
// @Summary      打开表单会话
// @Description  创建或编辑弹窗打开时调用；编辑模式传记录快照，slug字段按名称自动派生
// @Tags         表单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OpenFormRequest true "会话参数"
// @Success      200 {object} response.Response
// @Router       /admin/api/v1/forms [post]
func (h *FormHandler) Open(c *gin.Context) {
	var req dto.OpenFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	draft, err := h.forms.Open(req.Resource, domainform.Mode(req.Mode), req.TargetID, resource.Record(req.Initial))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

// SetField 更新表单字段
// @Summary      更新表单字段
// @Description  返回更新后的完整草稿（含派生的slug与字段级错误）
// @Tags         表单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话ID"
// @Param        request body dto.SetFieldRequest true "字段与新值"
// @Success      200 {object} response.Response
// @Router       /admin/api/v1/forms/{id}/fields [patch]
func (h *FormHandler) SetField(c *gin.Context) {
	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	draft, err := h.forms.SetField(c.Param("id"), req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

// Submit 提交表单
// @Summary      提交表单
// @Description  校验失败返回字段错误且不触达上游；上游拒绝时草稿保留、message原样返回
// @Tags         表单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "校验失败或上游拒绝"
// @Router       /admin/api/v1/forms/{id}/submit [post]
func (h *FormHandler) Submit(c *gin.Context) {
	result, err := h.forms.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		// 校验失败时带上字段错误详情
		if result != nil && len(result.FieldErrors) > 0 {
			appErr := apperrors.GetAppError(err)
			response.ErrorWithData(c, appErr.Code, appErr.Message, gin.H{"field_errors": result.FieldErrors})
			return
		}
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "提交成功", result.Record)
}

// Close 关闭表单会话
// @Summary      关闭表单会话
// @Description  用户取消弹窗时调用；幂等，重复关闭不报错
// @Tags         表单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话ID"
// @Success      200 {object} response.Response
// @Router       /admin/api/v1/forms/{id} [delete]
func (h *FormHandler) Close(c *gin.Context) {
	h.forms.Close(c.Param("id"))
	response.SuccessWithMessage(c, "已关闭", nil)
}
